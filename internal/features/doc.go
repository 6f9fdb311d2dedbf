// Package features implements the process-wide feature catalog consumed by
// the configuration filesystem.
//
// A Feature is a registrable capability with a name, a visibility flag and an
// optional ordered set of parameter descriptors. Hidden features are excluded
// from listings but remain selectable; they exist for internal plumbing such
// as the trace clock.
//
// The catalog is built once during bootstrap: built-in features are
// registered first, user-defined features are loaded from YAML definition
// files, then Seal freezes the catalog. No component mutates it afterwards,
// which is what allows the read side of the filesystem to enumerate features
// without holding the registry lock.
//
// The Registry also carries the activation capability: Apply resolves a
// configuration's selected features, publishes its parameter values to the
// per-parameter global stores and runs the Enable hooks; Teardown is the
// inverse. A partial Apply failure rolls back the features already enabled in
// the same call.
package features
