/*
Package ports defines the driven ports (interfaces) of the data model.

These interfaces decouple the core from concrete backends so that records and schemas can
live in memory, in plain files, in a loam document repository or in Redis.

# Key Interfaces

  - RecordStore: persists record documents, addressed by model and name.
  - SchemaStore: persists schema documents.
  - DistributedLocker: exclusive access to a record across processes.
*/
package ports
