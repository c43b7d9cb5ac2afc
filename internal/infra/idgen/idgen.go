package idgen

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

const orderNoLayout = "20060102150405"

// Generatorは注文番号と決済の取引IDを払い出す
type Generator struct {
	node *snowflake.Node
	now  func() time.Time
}

// nodeはプロセスごとに変える（0-1023）
func New(node int64) (*Generator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &Generator{node: n, now: time.Now}, nil
}

// YYYYMMDDHHMMSS + 6桁
func (g *Generator) OrderNo() string {
	id := g.node.Generate().Int64()
	return g.now().Format(orderNoLayout) + fmt.Sprintf("%06d", id%1000000)
}

// PAY + snowflake
func (g *Generator) TransactionID() string {
	return "PAY" + g.node.Generate().String()
}
