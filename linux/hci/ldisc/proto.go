package ldisc

import "strconv"

// NHCI is the HCI UART line discipline number.
const NHCI = 15

// HCI UART protocols.
const (
	ProtoH4    = 0
	ProtoBCSP  = 1
	Proto3Wire = 2
	ProtoH4DS  = 3
	ProtoLL    = 4
	ProtoH5    = 5
)

var protoNames = map[int]string{
	ProtoH4:    "h4",
	ProtoBCSP:  "bcsp",
	Proto3Wire: "3wire",
	ProtoH4DS:  "h4ds",
	ProtoLL:    "ll",
	ProtoH5:    "h5",
}

// ProtoName returns a printable name for proto.
func ProtoName(proto int) string {
	if n, ok := protoNames[proto]; ok {
		return n
	}
	return "proto(" + strconv.Itoa(proto) + ")"
}
