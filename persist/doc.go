// Package persist stores mapped values behind a reference. An Engine turns a
// Ref into bytes on some backend and back into a typed value through a
// mapper.Mapper; a Handle keeps the current value of one reference in memory
// and notifies listeners when it is reloaded.
//
// Every engine follows the same contract: loading a reference that holds
// nothing writes the defaults and returns them, and a reference of the wrong
// kind fails with ErrRefKind.
//
// Engines live in sub-packages:
//   - yamlfile: commented YAML documents on disk, addressed by PathRef
//   - redisdoc: MessagePack documents in Redis, addressed by KeyRef
//   - pgrow: JSON payload rows in PostgreSQL, addressed by KeyRef
package persist
