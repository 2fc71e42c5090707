package generator

import (
	"fmt"
)

type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// GenerateCartCode builds the short human-readable code shown on the
// checkout handoff screen.
func (g *CodeGenerator) GenerateCartCode(displayID int64) string {
	return fmt.Sprintf("PED-%06d", displayID)
}
