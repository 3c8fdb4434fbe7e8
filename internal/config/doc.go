// internal/config/doc.go

// Package config defines the format-agnostic representation of the user's
// build declarations: JDK installations, Java platforms, and JVM library
// components. A format-specific loader (see internal/hcl) translates source
// files into this model; domain plugins turn it into model-graph creators
// and rules without ever touching the source format.
package config
