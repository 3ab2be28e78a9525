// Package identity supplies the opaque per-user identity string attached to
// reference documents and persisted review records.
//
// The identity is a UUID minted once and stored under the config directory;
// GAUNTLET_USER overrides it for shared or scripted environments. When the
// identity cannot be established, callers must refuse to start runs or
// mutate reference documents.
package identity
