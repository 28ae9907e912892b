// Package types defines the entities, enums, configuration, and error kinds
// shared by the canvass store and its callers.
//
// Entities embed Meta, which carries the identity, modification timestamp,
// and tombstone flag that every persisted record has. The Store and Table
// interfaces give name-based access to entity repositories for generic
// tooling such as the CLI.
package types
