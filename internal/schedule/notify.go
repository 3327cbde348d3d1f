package schedule

import (
	"github.com/coreos/go-systemd/v22/daemon"

	logx "feedcaster/pkg/logx"
)

// Notifier reports daemon state to systemd (Type=notify units). Outside
// systemd NOTIFY_SOCKET is unset and every call is a no-op.
type Notifier struct {
	log  logx.Logger
	send func(state string) (bool, error)
}

func NewNotifier(log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		log:  log,
		send: func(state string) (bool, error) { return daemon.SdNotify(false, state) },
	}
}

func (n *Notifier) Ready() { n.notify(daemon.SdNotifyReady) }

func (n *Notifier) Reloading() { n.notify(daemon.SdNotifyReloading) }

func (n *Notifier) Stopping() { n.notify(daemon.SdNotifyStopping) }

func (n *Notifier) Status(msg string) { n.notify("STATUS=" + msg) }

func (n *Notifier) notify(state string) {
	sent, err := n.send(state)
	if err != nil {
		n.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		n.log.Trace("sd_notify", logx.String("state", state))
	}
}
