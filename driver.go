package gnssattach

// Event identifies which lifecycle moment an event hook is being invoked
// for (§4.3 step 7, §4.6, §9).
type Event int

const (
	EventWakeup Event = iota
	EventReactivate
	EventDeactivate
)

// EventHook is the polymorphic callback a bound Driver may supply. The
// spec places its internals out of scope (§1) — this core only needs to
// be able to call it.
type EventHook func(session *Session, ctx *Context, event Event)

// Driver is the minimal description of a device driver this core needs:
// a name to bind against (gpsd_switch_driver's argument) and an optional
// event hook. §9 calls for a vtable-like table of function values indexed
// by the bound driver rather than a type switch; Driver plus Context's
// registry slice is that table, made an explicit collaborator instead of
// a process-global array.
type Driver struct {
	Name      string
	EventHook EventHook // nil if this driver has no event hook
}

// fireWakeup implements §4.3 step 7: invoke WAKEUP on the session's bound
// driver if one is set, otherwise probe every registered driver that has
// a hook in turn ("probe cascade").
func fireWakeup(session *Session, ctx *Context) {
	if session.driver != nil {
		if session.driver.EventHook != nil {
			session.driver.EventHook(session, ctx, EventWakeup)
		}
		return
	}
	for _, d := range ctx.Drivers {
		if d.EventHook != nil {
			d.EventHook(session, ctx, EventWakeup)
		}
	}
}

// switchDriver binds session to the named driver from the context's
// registry, if one is registered under that name. Unrecognized names
// leave the session unbound, matching gpsd_switch_driver tolerating an
// unknown type name (NewContext registers the PPS driver that Open binds
// by name; the QRTR path binds its driver directly without this lookup).
func switchDriver(session *Session, ctx *Context, name string) {
	for _, d := range ctx.Drivers {
		if d.Name == name {
			session.driver = d
			return
		}
	}
}

// ppsDriver is the built-in placeholder driver bound by Open for PPS
// sources (§4.4 step 2). It has no event hook — PPS devices yield only
// timing edges, never NMEA, so there is nothing to wake up.
var ppsDriver = &Driver{Name: "PPS"}
