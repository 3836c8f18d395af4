package compiler

import "github.com/BoonLang/boon-sub004/internal/message"

// builtin is an intrinsic function: a fixed arity and a pure combine over
// its arguments' current values. Lowered as a Combiner with Combine set
// (engine.NewLatestDerived) rather than a user-defined FUNCTION inline,
// since arithmetic/comparison/boolean operators are not expressible as
// Boon source themselves — every language in this corpus bottoms out
// somewhere in host-native primitives.
type builtin struct {
	arity   int
	combine func(args []message.Payload) message.Payload
}

func numArg(p message.Payload) float64 {
	if p.Kind == message.KindNumber {
		return p.Number
	}
	return 0
}

func boolArg(p message.Payload) bool {
	return p.Kind == message.KindBoolean && p.Boolean
}

func textArg(p message.Payload) string {
	if p.Kind == message.KindText {
		return p.Text.String()
	}
	return p.String()
}

// builtins is keyed by the function's dotted Path (pathKey), matching the
// same resolution the compiler uses for user-defined FUNCTIONs.
var builtins = map[string]builtin{
	"+": {2, func(a []message.Payload) message.Payload {
		if a[0].Kind == message.KindText || a[1].Kind == message.KindText {
			return message.Str(textArg(a[0]) + textArg(a[1]))
		}
		return message.Num(numArg(a[0]) + numArg(a[1]))
	}},
	"-": {2, func(a []message.Payload) message.Payload { return message.Num(numArg(a[0]) - numArg(a[1])) }},
	"*": {2, func(a []message.Payload) message.Payload { return message.Num(numArg(a[0]) * numArg(a[1])) }},
	"/": {2, func(a []message.Payload) message.Payload {
		d := numArg(a[1])
		if d == 0 {
			return message.Flush(message.Str("division by zero"))
		}
		return message.Num(numArg(a[0]) / d)
	}},
	"==": {2, func(a []message.Payload) message.Payload { return message.Bool(a[0].Equal(a[1])) }},
	"!=": {2, func(a []message.Payload) message.Payload { return message.Bool(!a[0].Equal(a[1])) }},
	"<":  {2, func(a []message.Payload) message.Payload { return message.Bool(numArg(a[0]) < numArg(a[1])) }},
	"<=": {2, func(a []message.Payload) message.Payload { return message.Bool(numArg(a[0]) <= numArg(a[1])) }},
	">":  {2, func(a []message.Payload) message.Payload { return message.Bool(numArg(a[0]) > numArg(a[1])) }},
	">=": {2, func(a []message.Payload) message.Payload { return message.Bool(numArg(a[0]) >= numArg(a[1])) }},
	"and": {2, func(a []message.Payload) message.Payload { return message.Bool(boolArg(a[0]) && boolArg(a[1])) }},
	"or":  {2, func(a []message.Payload) message.Payload { return message.Bool(boolArg(a[0]) || boolArg(a[1])) }},
	"not": {1, func(a []message.Payload) message.Payload { return message.Bool(!boolArg(a[0])) }},
	"++": {2, func(a []message.Payload) message.Payload { return message.Str(textArg(a[0]) + textArg(a[1])) }},
}
