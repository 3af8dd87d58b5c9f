package portal

// EventSink receives increment-only notifications. The portal subsystem does
// not interpret them.
type EventSink interface {
	AddShot()
	AddTeleport()
}

type nopSink struct{}

func (nopSink) AddShot()     {}
func (nopSink) AddTeleport() {}
