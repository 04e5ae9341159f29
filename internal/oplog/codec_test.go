package oplog

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"photo-retouch/pkg/geometry"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stroke, err := NewLiquifyStroke([]StrokePoint{strokePoint(1, 2, 3, 4)}, "freeze-1")
	if err != nil {
		t.Fatalf("NewLiquifyStroke: %v", err)
	}
	mag, err := NewMagnifier(geometry.NewPoint2D(100, 100), 50, 0.3)
	if err != nil {
		t.Fatalf("NewMagnifier: %v", err)
	}
	twirl, err := NewTwirl(geometry.NewPoint2D(40, 60), 25, 0.8)
	if err != nil {
		t.Fatalf("NewTwirl: %v", err)
	}
	face, err := NewFaceParam("eyeSize", 8, 1)
	if err != nil {
		t.Fatalf("NewFaceParam: %v", err)
	}
	body, err := NewBodyParam("waist", -3)
	if err != nil {
		t.Fatalf("NewBodyParam: %v", err)
	}
	inpaint, err := NewInpaint("mask-7")
	if err != nil {
		t.Fatalf("NewInpaint: %v", err)
	}
	bg, err := NewBackground("beach.png", "matte-2")
	if err != nil {
		t.Fatalf("NewBackground: %v", err)
	}
	xform, err := NewTransform(90, true, false, &geometry.RectInt{X: 10, Y: 10, Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("NewTransform: %v", err)
	}
	color, err := NewColor(12, 1.1, 0.9)
	if err != nil {
		t.Fatalf("NewColor: %v", err)
	}

	ops := []Operation{stroke, mag, twirl, face, body, inpaint, bg, xform, color}

	data, err := EncodeOperations(ops)
	if err != nil {
		t.Fatalf("EncodeOperations: %v", err)
	}
	decoded, err := DecodeOperations(data)
	if err != nil {
		t.Fatalf("DecodeOperations: %v", err)
	}

	if !reflect.DeepEqual(decoded, ops) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", decoded, ops)
	}
}

func TestEncodeIncludesTypeTag(t *testing.T) {
	mag, err := NewMagnifier(geometry.NewPoint2D(1, 1), 10, 0.1)
	if err != nil {
		t.Fatalf("NewMagnifier: %v", err)
	}
	data, err := EncodeOperations([]Operation{mag})
	if err != nil {
		t.Fatalf("EncodeOperations: %v", err)
	}
	if !strings.Contains(string(data), `"type":"magnifier"`) {
		t.Errorf("encoded form missing type tag: %s", data)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := DecodeOperations([]byte(`[{"type":"sparkle","center":{"x":1,"y":1}}]`))
	if !errors.Is(err, ErrMalformedOperation) {
		t.Errorf("unknown kind error = %v, want ErrMalformedOperation", err)
	}
}

func TestDecodeRejectsMissingKind(t *testing.T) {
	_, err := DecodeOperations([]byte(`[{"center":{"x":1,"y":1},"radius":5}]`))
	if !errors.Is(err, ErrMalformedOperation) {
		t.Errorf("missing kind error = %v, want ErrMalformedOperation", err)
	}
}

func TestDecodeRejectsInvalidGeometry(t *testing.T) {
	// A negative radius must never survive loading.
	_, err := DecodeOperations([]byte(`[{"type":"magnifier","center":{"x":1,"y":1},"radius":-5,"strength":0.2}]`))
	if !errors.Is(err, ErrMalformedOperation) {
		t.Errorf("invalid geometry error = %v, want ErrMalformedOperation", err)
	}
}

func TestConstructorsRejectInvalidGeometry(t *testing.T) {
	if _, err := NewMagnifier(geometry.NewPoint2D(0, 0), -1, 0.5); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("negative radius error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := NewMagnifier(geometry.NewPoint2D(0, 0), 10, 100); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("excessive strength error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := NewColor(0, -1, 1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("negative contrast error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := NewLiquifyStroke(nil, ""); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("empty stroke error = %v, want ErrInvalidGeometry", err)
	}
}
