package memory_test

import (
	"testing"

	"github.com/aretw0/datamodel/pkg/adapters/memory"
	"github.com/aretw0/datamodel/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunRecordStoreContract(t, store)
}

func TestMemoryStore_SchemaContract(t *testing.T) {
	ports.RunSchemaStoreContract(t, memory.NewStore())
}
