package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the node number used for generated ids. Calling it is optional;
// the first Generate falls back to node 1.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func Generate() snowflake.ID {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		// node 1 is always inside the valid range
		node, _ = snowflake.NewNode(1)
	}
	return node.Generate()
}

// GenerateID returns a new id as int64, for database keys.
func GenerateID() int64 {
	return Generate().Int64()
}
