package compiler

import "github.com/xirelogy/go-lox/internal/token"

// Precedence orders binding strength from loosest to tightest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type ruleKind int

const (
	ruleNone ruleKind = iota
	ruleGrouping
	ruleUnary
	ruleBinary
	ruleNumber
	ruleLiteral
)

type parseRule struct {
	prefix     ruleKind
	infix      ruleKind
	precedence Precedence
}

// Tokens absent from the table have no prefix or infix behaviour and bind
// at PrecNone, which ends any infix loop.
var rules = map[token.Type]parseRule{
	token.LParen: {prefix: ruleGrouping},
	token.Minus:  {prefix: ruleUnary, infix: ruleBinary, precedence: PrecTerm},
	token.Plus:   {infix: ruleBinary, precedence: PrecTerm},
	token.Slash:  {infix: ruleBinary, precedence: PrecFactor},
	token.Star:   {infix: ruleBinary, precedence: PrecFactor},
	token.Number: {prefix: ruleNumber},
	token.False:  {prefix: ruleLiteral},
	token.True:   {prefix: ruleLiteral},
	token.Nil:    {prefix: ruleLiteral},
}

func getRule(t token.Type) parseRule {
	return rules[t]
}
