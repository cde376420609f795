package template

import (
	"encoding/hex"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/zeebo/blake3"

	"github.com/LeoDT/log-majin/pkg/id"
)

// Template is the mutable definition of a record type: a name, an ordered
// slot list, and styling. Owned by the editing surface; every edit is
// persisted through the Store. ArchiveAtMs set hides it from creation
// surfaces while historical logs keep referencing it.
type Template struct {
	ID         string `json:"id" cbor:"id"`
	Name       string `json:"name" cbor:"name"`
	Slots      Slots  `json:"slots" cbor:"slots"`
	Color      string `json:"color" cbor:"color"`
	Icon       string `json:"icon" cbor:"icon"`
	CreateAtMs int64  `json:"createAtMs" cbor:"createAtMs"`
	UpdateAtMs int64  `json:"updateAtMs" cbor:"updateAtMs"`
	ArchiveAtMs int64 `json:"archiveAtMs,omitempty" cbor:"archiveAtMs,omitempty"`
}

// Revision is an immutable snapshot of a template's loggable fields at the
// time a log was created against it. UpdateAtMs and ArchiveAtMs are stripped
// by construction. Once written a revision never changes; content changes
// always mint a new revision under a new id.
type Revision struct {
	ID         string `json:"id" cbor:"id"`
	TemplateID string `json:"templateId" cbor:"templateId"`
	Name       string `json:"name" cbor:"name"`
	Slots      Slots  `json:"slots" cbor:"slots"`
	Color      string `json:"color" cbor:"color"`
	Icon       string `json:"icon" cbor:"icon"`
	CreateAtMs int64  `json:"createAtMs" cbor:"createAtMs"`
}

// Archived reports whether the template has been archived.
func (t Template) Archived() bool { return t.ArchiveAtMs != 0 }

// IsNoInput reports whether no slot requires user input, i.e. the template
// can be logged with a single tap.
func (t Template) IsNoInput() bool {
	for _, s := range t.Slots {
		if s.Kind().NeedsInput() {
			return false
		}
	}
	return true
}

// contentHashKey is the BLAKE3 domain key for template content hashing.
// Fixed constant: changing it invalidates every stored revision comparison.
var contentHashKey = [32]byte{
	'm', 'a', 'j', 'i', 'n', '.', 't', 'e', 'm', 'p', 'l', 'a', 't', 'e', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// hashContent fingerprints the loggable content: name, color, icon, and the
// ordered (id, kind, name) triple of every slot. Kind-specific attributes
// (select options, placeholders) are excluded, so editing only those never
// counts as a content change.
func hashContent(name, color, icon string, slots Slots) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(color)
	b.WriteByte(':')
	b.WriteString(icon)
	b.WriteByte(':')
	for i, s := range slots {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(s.SlotID())
		b.WriteByte('.')
		b.WriteString(string(s.Kind()))
		b.WriteByte('.')
		b.WriteString(s.SlotName())
	}

	hasher, err := blake3.NewKeyed(contentHashKey[:])
	if err != nil {
		panic("template: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(b.String()))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Hash returns the template's content fingerprint.
func (t Template) Hash() string {
	return hashContent(t.Name, t.Color, t.Icon, t.Slots)
}

// Hash returns the revision's content fingerprint. A revision hashes equal
// to the template it was snapped from as long as the template's loggable
// content is unchanged.
func (r Revision) Hash() string {
	return hashContent(r.Name, r.Color, r.Icon, r.Slots)
}

// NewRevision snaps a template into an immutable revision with a fresh id
// and timestamp.
func NewRevision(t Template, revisionID string, at time.Time) Revision {
	slots := make(Slots, len(t.Slots))
	copy(slots, t.Slots)
	return Revision{
		ID:         revisionID,
		TemplateID: t.ID,
		Name:       t.Name,
		Slots:      slots,
		Color:      t.Color,
		Icon:       t.Icon,
		CreateAtMs: at.UnixMilli(),
	}
}

// Validate checks structural validity of a template definition.
func (t Template) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&t.Slots, validation.Required, validation.By(validateSlots)),
	)
}

func validateSlots(value interface{}) error {
	slots, _ := value.(Slots)
	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		if !s.Kind().valid() {
			return validation.NewError("validation_slot_kind", "unknown slot kind")
		}
		if s.SlotID() == "" {
			return validation.NewError("validation_slot_id", "slot id is required")
		}
		if _, dup := seen[s.SlotID()]; dup {
			return validation.NewError("validation_slot_id", "slot id must be unique within a template")
		}
		seen[s.SlotID()] = struct{}{}
		if s.SlotName() == "" {
			return validation.NewError("validation_slot_name", "slot name is required")
		}
		if sel, ok := s.(SelectSlot); ok && len(sel.Options) == 0 {
			return validation.NewError("validation_slot_options", "select slot needs at least one option")
		}
	}
	return nil
}

// Default returns the starter template handed to new users: one static text
// slot and one of each input kind.
func Default(gen *id.Generator, at time.Time) Template {
	return Template{
		ID:   gen.Next().String(),
		Name: "My Template",
		Slots: Slots{
			TextSlot{ID: gen.Next().String(), Name: "Had"},
			TextInputSlot{ID: gen.Next().String(), Name: "what"},
			NumberSlot{ID: gen.Next().String(), Name: "count"},
			SelectSlot{ID: gen.Next().String(), Name: "mood", Options: []string{"Option 1", "Option 2"}},
		},
		Color:      "#718096",
		Icon:       "./Business/archive.svg",
		CreateAtMs: at.UnixMilli(),
		UpdateAtMs: at.UnixMilli(),
	}
}
