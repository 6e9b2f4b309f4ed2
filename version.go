package datamodel

// Version is the release of this module. Release builds override it with
// -ldflags "-X github.com/aretw0/datamodel.Version=...".
var Version = "0.1.0-dev"
