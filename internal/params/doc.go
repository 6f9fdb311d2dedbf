// Package params defines the parameter value contract consumed by the
// configuration filesystem and the feature catalog.
//
// A Param is a typed, named tunable belonging to a feature. Its Ops value-type
// contract converts between the textual tokens users write into parameter
// files and the opaque Values stored in value stores:
//
//	Parse(token) -> Value | error
//	Format(Value) -> text
//
// Three concrete kinds cover the built-in catalog (string, uint, bool); other
// packages may provide their own Ops, for example the feature-selection
// pseudo-parameter which validates tokens against the sealed catalog.
//
// A Store is an insertion-ordered collection of parsed Values. Stores carry no
// locking of their own: per-configuration stores are guarded by the owning
// filesystem's registry lock, and each Param additionally owns one global,
// configuration-independent Store that activation publishes into and
// filesystem teardown drains.
package params
