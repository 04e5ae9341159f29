package detect

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"photo-retouch/pkg/geometry"
)

// EstimateAlignment computes the affine transform that best maps the
// source points onto the destination points in the least-squares sense.
// It is used to place canonical face-template anchors onto a detected
// face: the template's landmark anchors are the source, the detected
// landmark centroids are the destination.
func EstimateAlignment(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n != len(dst) {
		return geometry.AffineTransform{}, fmt.Errorf("point count mismatch: %d vs %d", n, len(dst))
	}
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 3 points, got %d", n)
	}

	// Build the overdetermined system A * params = B with
	// params = [a b tx c d ty].
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, yp)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("alignment solve failed: %w", err)
	}

	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}
