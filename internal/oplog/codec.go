package oplog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedOperation is returned when persisted operation data carries
// an unknown kind tag or fields that fail validation. Loaders reject such
// data instead of silently dropping a user's edit.
var ErrMalformedOperation = errors.New("malformed operation")

// EncodeOperations marshals operations to a JSON array. Each element has
// the wire shape {"type": <kind>, ...kind-specific fields}.
func EncodeOperations(ops []Operation) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ops))
	for i, op := range ops {
		raw, err := encodeOperation(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Kind(), err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// EncodeOperation marshals a single operation to its wire shape.
func EncodeOperation(op Operation) ([]byte, error) {
	return encodeOperation(op)
}

// DecodeOperations unmarshals a JSON array produced by EncodeOperations.
// Every element is validated; an unknown type tag or out-of-bounds field
// yields ErrMalformedOperation.
func DecodeOperations(data []byte) ([]Operation, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("operations array: %w", err)
	}

	ops := make([]Operation, 0, len(raws))
	for i, raw := range raws {
		op, err := decodeOperation(raw)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func encodeOperation(op Operation) (json.RawMessage, error) {
	body, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}

	// Splice the kind tag into the operation's own fields.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(op.Kind())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag

	return json.Marshal(fields)
}

func decodeOperation(raw json.RawMessage) (Operation, error) {
	var envelope struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOperation, err)
	}

	var (
		op  Operation
		err error
	)
	switch envelope.Type {
	case KindLiquifyStroke:
		op, err = unmarshalOp[LiquifyStroke](raw)
	case KindMagnifier:
		op, err = unmarshalOp[Magnifier](raw)
	case KindTwirl:
		op, err = unmarshalOp[Twirl](raw)
	case KindBodyParam:
		op, err = unmarshalOp[BodyParam](raw)
	case KindFaceParam:
		op, err = unmarshalOp[FaceParam](raw)
	case KindInpaint:
		op, err = unmarshalOp[Inpaint](raw)
	case KindBackground:
		op, err = unmarshalOp[Background](raw)
	case KindTransform:
		op, err = unmarshalOp[Transform](raw)
	case KindColor:
		op, err = unmarshalOp[Color](raw)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedOperation, envelope.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := op.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOperation, err)
	}
	return op, nil
}

func unmarshalOp[T Operation](raw json.RawMessage) (Operation, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOperation, err)
	}
	return v, nil
}
