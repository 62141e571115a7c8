package signal

import "github.com/dkeye/Consult/internal/core"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.Orch.Send(conn, core.EventPong, struct{}{})
}
