// Package template defines the template model: the Slot sum type, the
// mutable Template record, the immutable Revision snapshot, and the content
// hash used for change detection.
//
// # Content hash
//
// The fingerprint covers name, color, icon, and the ordered (id, kind, name)
// triple of every slot:
//
//	name:color:icon:id.kind.name|id.kind.name|...
//
// digested with keyed BLAKE3. Kind-specific attributes (select options,
// placeholders) are deliberately excluded: editing only those does not mint
// a new revision, and historical logs reconcile against the option list
// current at read time.
//
// # Collections
//
// Store persists the mutable template collection under tpl/{id}. Revisions
// live in the revision package; only the commit path creates them.
package template
