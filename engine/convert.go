package engine

import "github.com/BoonLang/boon-sub004/internal/message"

// payloadToHost converts an engine Payload to the plain Go value the host
// adapter boundary exchanges (spec.md §6: BridgeEvent.Value/Payload are
// untyped `any`, since the host renderer owns interpretation). Aggregate
// handles (List/Object) are passed through as their SlotId so a host that
// wants structure can look the node back up via Loop.Node; most hosts only
// care about the scalar cases.
func payloadToHost(p message.Payload) any {
	switch p.Kind {
	case message.KindUnit:
		return nil
	case message.KindNumber:
		return p.Number
	case message.KindText:
		return p.Text.String()
	case message.KindBoolean:
		return p.Boolean
	case message.KindTag:
		return p.Tag
	case message.KindFlushed:
		return payloadToHost(*p.Flushed)
	default:
		return p
	}
}
