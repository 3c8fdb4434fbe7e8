// internal/hcl/doc.go

// Package hcl is the HCL implementation of config.Loader. It discovers .hcl
// files under the given paths, decodes jdk, platform, and jvm_library blocks,
// and evaluates free-form library attributes into plain Go values.
package hcl
