package devicesim

import (
	"context"
	"log/slog"

	"github.com/dlight-protocol/dlight-go/pkg/transport"
	"github.com/dlight-protocol/dlight-go/pkg/wire"
)

type stateReply struct {
	On         bool       `json:"on"`
	Brightness int        `json:"brightness"`
	Color      colorReply `json:"color"`
}

type colorReply struct {
	Temperature int `json:"temperature"`
}

type statesReply struct {
	CommandID string      `json:"commandId,omitempty"`
	Status    wire.Status `json:"status"`
	States    *stateReply `json:"states,omitempty"`
}

type executeReply struct {
	CommandID string      `json:"commandId,omitempty"`
	Status    wire.Status `json:"status"`
	stateReply
}

func (d *Device) handle(ctx context.Context, conn *transport.ServerConn) {
	var cmd wire.Command
	if err := wire.NewCommandDecoder(conn).Decode(&cmd); err != nil {
		d.logger.Debug("unreadable command", slog.String("conn_id", conn.ConnID()), slog.Any("error", err))
		return
	}

	d.mu.Lock()
	d.commands = append(d.commands, cmd)
	mode := d.mode
	rawLength := d.rawLength
	d.mu.Unlock()

	if err := cmd.Validate(); err != nil {
		d.logger.Debug("invalid command", slog.String("command_id", cmd.CommandID), slog.Any("error", err))
		return
	}
	if cmd.DeviceID != d.config.DeviceID {
		d.logger.Debug("command for another device", slog.String("device_id", cmd.DeviceID))
		return
	}

	switch mode {
	case ModeSilent:
		return
	case ModeStall:
		select {
		case <-ctx.Done():
		case <-d.stall:
		}
		return
	case ModeGarbage:
		_ = conn.Reply([]byte("not json"))
		return
	}

	body, err := wire.EncodeResponse(d.apply(&cmd, mode))
	if err != nil {
		d.logger.Error("encode reply", slog.Any("error", err))
		return
	}

	switch mode {
	case ModeBadLength:
		err = conn.ReplyRaw(rawLength, body)
	case ModeShortBody:
		err = conn.ReplyRaw(uint32(len(body))+16, body)
	default:
		err = conn.Reply(body)
	}
	if err != nil {
		d.logger.Debug("reply failed", slog.Any("error", err))
	}
}

// apply executes cmd against the light state and builds the reply.
func (d *Device) apply(cmd *wire.Command, mode Mode) any {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd.CommandType {
	case wire.CommandQueryDeviceInfo:
		return d.config.Info

	case wire.CommandQueryDeviceStates:
		if mode == ModeFailure {
			return statesReply{CommandID: cmd.CommandID, Status: "FAILURE"}
		}
		s := d.stateReplyLocked()
		return statesReply{CommandID: cmd.CommandID, Status: wire.StatusSuccess, States: &s}

	default:
		for _, a := range cmd.Commands {
			switch {
			case a.On != nil:
				d.state.On = *a.On
			case a.Brightness != nil:
				d.state.Brightness = *a.Brightness
			case a.Color != nil:
				d.state.Temperature = min(max(a.Color.Temperature, wire.MinTemperature), wire.MaxTemperature)
			}
		}
		return executeReply{CommandID: cmd.CommandID, Status: wire.StatusSuccess, stateReply: d.stateReplyLocked()}
	}
}

func (d *Device) stateReplyLocked() stateReply {
	return stateReply{
		On:         d.state.On,
		Brightness: d.state.Brightness,
		Color:      colorReply{Temperature: d.state.Temperature},
	}
}
