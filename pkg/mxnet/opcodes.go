package mxnet

// Message type opcodes. A reply carries the same opcode as its request
// with ResponseFlag set in the MESSAGE_TYPE word.
const (
	OpGetArrayByName   uint32 = 1
	OpPutArrayByName   uint32 = 2
	OpGetArrayByHandle uint32 = 3
	OpPutArrayByHandle uint32 = 4
	OpGetNetworkHandle uint32 = 5
	OpGetFieldType     uint32 = 6
	OpSetClientInfo    uint32 = 7
	OpGetOption        uint32 = 8
	OpSetOption        uint32 = 9
	OpGetAttribute     uint32 = 10
	OpSetAttribute     uint32 = 11
	OpAddCallback      uint32 = 12
	OpDeleteCallback   uint32 = 13
	OpCallback         uint32 = 14
	OpUnexpectedError  uint32 = 15
)

// ResponseFlag set in the high bit of MESSAGE_TYPE marks a reply; the low
// 31 bits still identify which request opcode it answers.
const ResponseFlag uint32 = 0x80000000

func opName(opcode uint32) string {
	switch opcode &^ ResponseFlag {
	case OpGetArrayByName:
		return "GET_ARRAY_BY_NAME"
	case OpPutArrayByName:
		return "PUT_ARRAY_BY_NAME"
	case OpGetArrayByHandle:
		return "GET_ARRAY_BY_HANDLE"
	case OpPutArrayByHandle:
		return "PUT_ARRAY_BY_HANDLE"
	case OpGetNetworkHandle:
		return "GET_NETWORK_HANDLE"
	case OpGetFieldType:
		return "GET_FIELD_TYPE"
	case OpSetClientInfo:
		return "SET_CLIENT_INFO"
	case OpGetOption:
		return "GET_OPTION"
	case OpSetOption:
		return "SET_OPTION"
	case OpGetAttribute:
		return "GET_ATTRIBUTE"
	case OpSetAttribute:
		return "SET_ATTRIBUTE"
	case OpAddCallback:
		return "ADD_CALLBACK"
	case OpDeleteCallback:
		return "DELETE_CALLBACK"
	case OpCallback:
		return "CALLBACK"
	case OpUnexpectedError:
		return "UNEXPECTED_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Option identifiers used with GetOption/SetOption.
const (
	OptionDataFormat       uint32 = 1
	OptionNativeDataFormat uint32 = 2
	OptionUse64BitLongs    uint32 = 3
	OptionWordSize         uint32 = 4
	OptionClientVersion    uint32 = 5
	OptionClientVersionTime uint32 = 6
)

// Attribute identifiers used with GetAttribute/SetAttribute.
const (
	AttributeValueChangeThreshold uint32 = 1
	AttributePollPeriod           uint32 = 2
	AttributeReadOnly             uint32 = 3
	AttributeNoAccess             uint32 = 4
)
