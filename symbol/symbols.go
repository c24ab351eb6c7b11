package symbol

import (
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
)

const stringName = "java.lang.String"

// TypeOfLiteral returns the corresponding type for a Java literal, or nil for
// `null`, which has no type of its own
func (gs *GlobalSymbols) TypeOfLiteral(literal *tree.Literal) javatype.Type {
	switch literal.Kind {
	case tree.IntLiteral:
		return javatype.Int
	case tree.LongLiteral:
		return javatype.Long
	case tree.FloatLiteral:
		return javatype.Float
	case tree.DoubleLiteral:
		return javatype.Double
	case tree.CharLiteral:
		return javatype.Char
	case tree.BooleanLiteral:
		return javatype.Boolean
	case tree.StringLiteral:
		if class := gs.Class(stringName); class != nil {
			return class
		}
	}
	return nil
}
