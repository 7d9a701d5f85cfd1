// Package evt provides views over HCI event frames received from the chip.
package evt

// Event codes seen during bring-up.
const (
	CommandCompleteCode = 0x0e
	CommandStatusCode   = 0x0f
	VendorSpecificCode  = 0xff
)

// Event is a complete frame: packet indicator, event code, parameter length,
// parameters.
type Event []byte

func (e Event) PacketType() uint8 {
	v, _ := e.PacketTypeWErr()
	return v
}

func (e Event) Code() uint8 {
	v, _ := e.CodeWErr()
	return v
}

func (e Event) ParameterLength() uint8 {
	v, _ := e.ParameterLengthWErr()
	return v
}

func (e Event) Parameters() []byte {
	v, _ := e.ParametersWErr()
	return v
}

// CommandComplete returns the parameters as a Command Complete event, or nil
// if the event is something else.
func (e Event) CommandComplete() CommandComplete {
	if e.Code() != CommandCompleteCode {
		return nil
	}
	return CommandComplete(e.Parameters())
}

// CommandComplete is the parameter block of a Command Complete event.
type CommandComplete []byte

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

// Status is the first return parameter; 0xff when absent.
func (e CommandComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}
