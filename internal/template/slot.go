package template

import (
	"encoding/json"
	"fmt"

	"github.com/LeoDT/log-majin/pkg/codec"
)

// SlotKind discriminates the slot variants.
type SlotKind string

const (
	KindText      SlotKind = "text"
	KindTextInput SlotKind = "text-input"
	KindSelect    SlotKind = "select"
	KindNumber    SlotKind = "number"
)

// NeedsInput reports whether the kind requires a user-supplied value.
func (k SlotKind) NeedsInput() bool {
	return k == KindTextInput || k == KindSelect || k == KindNumber
}

// NeedsHistory reports whether entered values are recorded in the per-slot
// input history. Only free-text input qualifies; Select and Number values
// come from constrained widgets.
func (k SlotKind) NeedsHistory() bool {
	return k == KindTextInput
}

func (k SlotKind) valid() bool {
	switch k {
	case KindText, KindTextInput, KindSelect, KindNumber:
		return true
	}
	return false
}

// Slot is one field definition inside a template. The slot id is unique
// within a template and stable across edits: identity survives renames and
// reorders.
type Slot interface {
	SlotID() string
	SlotName() string
	Kind() SlotKind
}

// TextSlot is static text; it needs no input and its name is its content.
type TextSlot struct {
	ID   string
	Name string
}

func (s TextSlot) SlotID() string   { return s.ID }
func (s TextSlot) SlotName() string { return s.Name }
func (s TextSlot) Kind() SlotKind   { return KindText }

// TextInputSlot is a free-text input.
type TextInputSlot struct {
	ID          string
	Name        string
	Placeholder string
}

func (s TextInputSlot) SlotID() string   { return s.ID }
func (s TextInputSlot) SlotName() string { return s.Name }
func (s TextInputSlot) Kind() SlotKind   { return KindTextInput }

// SelectSlot picks one (or several) of a fixed option list. Options are not
// part of the template content hash: editing only the options of a select
// does not mint a new revision.
type SelectSlot struct {
	ID       string
	Name     string
	Options  []string
	Multiple bool
}

func (s SelectSlot) SlotID() string   { return s.ID }
func (s SelectSlot) SlotName() string { return s.Name }
func (s SelectSlot) Kind() SlotKind   { return KindSelect }

// NumberSlot is a numeric input; values are kept as entered strings.
type NumberSlot struct {
	ID          string
	Name        string
	Placeholder string
}

func (s NumberSlot) SlotID() string   { return s.ID }
func (s NumberSlot) SlotName() string { return s.Name }
func (s NumberSlot) Kind() SlotKind   { return KindNumber }

// Slots is an ordered slot list with kind-tagged envelope encoding.
type Slots []Slot

// slotEnvelope is the flat wire form shared by JSON and CBOR. Kind selects
// the variant; unrelated fields stay empty.
type slotEnvelope struct {
	Kind        SlotKind `json:"kind" cbor:"kind"`
	ID          string   `json:"id" cbor:"id"`
	Name        string   `json:"name" cbor:"name"`
	Placeholder string   `json:"placeholder,omitempty" cbor:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty" cbor:"options,omitempty"`
	Multiple    bool     `json:"multiple,omitempty" cbor:"multiple,omitempty"`
}

func envelopeFor(s Slot) slotEnvelope {
	env := slotEnvelope{Kind: s.Kind(), ID: s.SlotID(), Name: s.SlotName()}
	switch v := s.(type) {
	case TextInputSlot:
		env.Placeholder = v.Placeholder
	case SelectSlot:
		env.Options = v.Options
		env.Multiple = v.Multiple
	case NumberSlot:
		env.Placeholder = v.Placeholder
	}
	return env
}

func (e slotEnvelope) slot() (Slot, error) {
	switch e.Kind {
	case KindText:
		return TextSlot{ID: e.ID, Name: e.Name}, nil
	case KindTextInput:
		return TextInputSlot{ID: e.ID, Name: e.Name, Placeholder: e.Placeholder}, nil
	case KindSelect:
		return SelectSlot{ID: e.ID, Name: e.Name, Options: e.Options, Multiple: e.Multiple}, nil
	case KindNumber:
		return NumberSlot{ID: e.ID, Name: e.Name, Placeholder: e.Placeholder}, nil
	}
	return nil, fmt.Errorf("template: unknown slot kind %q", e.Kind)
}

func (s Slots) envelopes() []slotEnvelope {
	envs := make([]slotEnvelope, len(s))
	for i, slot := range s {
		envs[i] = envelopeFor(slot)
	}
	return envs
}

func slotsFromEnvelopes(envs []slotEnvelope) (Slots, error) {
	out := make(Slots, len(envs))
	for i, e := range envs {
		slot, err := e.slot()
		if err != nil {
			return nil, err
		}
		out[i] = slot
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (s Slots) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.envelopes())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Slots) UnmarshalJSON(data []byte) error {
	var envs []slotEnvelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return err
	}
	slots, err := slotsFromEnvelopes(envs)
	if err != nil {
		return err
	}
	*s = slots
	return nil
}

// MarshalCBOR implements cbor.Marshaler.
func (s Slots) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(s.envelopes())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (s *Slots) UnmarshalCBOR(data []byte) error {
	var envs []slotEnvelope
	if err := codec.Unmarshal(data, &envs); err != nil {
		return err
	}
	slots, err := slotsFromEnvelopes(envs)
	if err != nil {
		return err
	}
	*s = slots
	return nil
}

// ByID returns the slot with the given id, if present.
func (s Slots) ByID(id string) (Slot, bool) {
	for _, slot := range s {
		if slot.SlotID() == id {
			return slot, true
		}
	}
	return nil, false
}
