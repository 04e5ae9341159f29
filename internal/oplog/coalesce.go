package oplog

// Coalesce merges same-kind operations where merging is semantically
// lossless:
//
//   - all liquify strokes merge into one operation carrying every
//     displacement sample in original order and the last stroke's freeze
//     mask reference, placed where the first stroke was;
//   - body and face parameters keep only the latest value per key (face
//     parameters key on control name and face index), at the position of
//     that key's last occurrence;
//   - color keeps only the last operation, since later color adjustments
//     supersede earlier ones entirely.
//
// Coalescing discards all undo/redo history. It is a one-way
// simplification meant for the point where history depth is no longer
// needed, e.g. before long-term persistence.
func (l *Log) Coalesce() {
	if len(l.ops) == 0 {
		l.undo = nil
		l.redo = nil
		return
	}

	var (
		strokePoints  []StrokePoint
		freezeMaskRef string
		firstLiquify  = -1
		lastColor     = -1
		lastBodyByKey = map[string]int{}
		lastFaceByKey = map[faceKey]int{}
	)

	for i, op := range l.ops {
		switch v := op.(type) {
		case LiquifyStroke:
			if firstLiquify < 0 {
				firstLiquify = i
			}
			strokePoints = append(strokePoints, v.Points...)
			freezeMaskRef = v.FreezeMaskRef
		case BodyParam:
			lastBodyByKey[v.Key] = i
		case FaceParam:
			lastFaceByKey[faceKey{v.Key, v.FaceIndex}] = i
		case Color:
			lastColor = i
		}
	}

	merged := make([]Operation, 0, len(l.ops))
	for i, op := range l.ops {
		switch v := op.(type) {
		case LiquifyStroke:
			if i == firstLiquify {
				merged = append(merged, LiquifyStroke{
					Points:        strokePoints,
					FreezeMaskRef: freezeMaskRef,
				})
			}
		case BodyParam:
			if lastBodyByKey[v.Key] == i {
				merged = append(merged, v)
			}
		case FaceParam:
			if lastFaceByKey[faceKey{v.Key, v.FaceIndex}] == i {
				merged = append(merged, v)
			}
		case Color:
			if i == lastColor {
				merged = append(merged, v)
			}
		default:
			merged = append(merged, op)
		}
	}

	l.ops = merged
	l.undo = nil
	l.redo = nil
	l.notify()
}

type faceKey struct {
	key   string
	index int
}
