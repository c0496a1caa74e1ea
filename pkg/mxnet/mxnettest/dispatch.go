package mxnettest

import (
	"encoding/binary"
	"net"
	"strings"

	"github.com/openmx/mxnet/pkg/mxnet"
	"github.com/openmx/mxnet/pkg/mxnet/wire"
)

func (s *Server) dispatch(conn net.Conn, opcode, statusCode, dataType, msgID uint32, body []byte) {
	_ = statusCode
	switch opcode {
	case mxnet.OpGetOption:
		s.handleGetOption(conn, msgID, body)
	case mxnet.OpSetOption:
		s.handleSetOption(conn, msgID, body)
	case mxnet.OpSetClientInfo:
		_ = s.writeMessage(conn, opcode|mxnet.ResponseFlag, 0, 0, msgID, nil)
	case mxnet.OpGetNetworkHandle:
		s.handleGetNetworkHandle(conn, msgID, body)
	case mxnet.OpGetFieldType:
		s.handleGetFieldType(conn, msgID, body)
	case mxnet.OpGetArrayByName:
		s.handleGetArrayByName(conn, msgID, dataType, body)
	case mxnet.OpGetArrayByHandle:
		s.handleGetArrayByHandle(conn, msgID, dataType, body)
	case mxnet.OpPutArrayByName:
		s.handlePutArrayByName(conn, msgID, dataType, body)
	case mxnet.OpPutArrayByHandle:
		s.handlePutArrayByHandle(conn, msgID, dataType, body)
	case mxnet.OpGetAttribute:
		s.handleGetAttribute(conn, msgID, body)
	case mxnet.OpSetAttribute:
		_ = s.writeMessage(conn, opcode|mxnet.ResponseFlag, 0, 0, msgID, nil)
	case mxnet.OpAddCallback:
		s.handleAddCallback(conn, msgID, body)
	case mxnet.OpDeleteCallback:
		_ = s.writeMessage(conn, opcode|mxnet.ResponseFlag, 0, 0, msgID, nil)
	default:
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindNotYetImplemented, "unhandled opcode")
	}
}

func (s *Server) handleGetOption(conn net.Conn, msgID uint32, body []byte) {
	val, err := wire.UnmarshalOptionValue(body)
	if err != nil {
		s.errorReply(conn, mxnet.OpGetOption, msgID, mxnet.ErrorKindCorruptDataStructure, err.Error())
		return
	}
	var v uint32
	switch val.OptionID {
	case mxnet.OptionNativeDataFormat, mxnet.OptionDataFormat:
		s.mu.Lock()
		v = uint32(s.format)
		s.mu.Unlock()
	case mxnet.OptionClientVersion:
		v = 2001000
	case mxnet.OptionClientVersionTime:
		v = 1700000000
	}
	resp, _ := wire.MarshalOptionValue(wire.OptionValue{OptionID: val.OptionID, Value: v})
	_ = s.writeMessage(conn, mxnet.OpGetOption|mxnet.ResponseFlag, 0, 0, msgID, resp)
}

func (s *Server) handleSetOption(conn net.Conn, msgID uint32, body []byte) {
	val, err := wire.UnmarshalOptionValue(body)
	if err != nil {
		s.errorReply(conn, mxnet.OpSetOption, msgID, mxnet.ErrorKindCorruptDataStructure, err.Error())
		return
	}
	if val.OptionID == mxnet.OptionDataFormat {
		s.mu.Lock()
		s.format = wire.Format(val.Value)
		s.mu.Unlock()
	}
	_ = s.writeMessage(conn, mxnet.OpSetOption|mxnet.ResponseFlag, 0, 0, msgID, nil)
}

func (s *Server) fieldByName(name string) (*Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fields[name]
	return f, ok
}

func (s *Server) handleGetNetworkHandle(conn net.Conn, msgID uint32, body []byte) {
	name := string(body)
	f, ok := s.fieldByName(name)
	if !ok {
		s.errorReply(conn, mxnet.OpGetNetworkHandle, msgID, mxnet.ErrorKindIllegalArgument, "no such field: "+name)
		return
	}
	resp, _ := wire.MarshalHandlePair(wire.HandlePair{RecordHandle: f.RecordHandle, FieldHandle: f.FieldHandle})
	_ = s.writeMessage(conn, mxnet.OpGetNetworkHandle|mxnet.ResponseFlag, 0, 0, msgID, resp)
}

func (s *Server) handleGetFieldType(conn net.Conn, msgID uint32, body []byte) {
	name := strings.TrimRight(string(body), "\x00")
	f, ok := s.fieldByName(name)
	if !ok {
		s.errorReply(conn, mxnet.OpGetFieldType, msgID, mxnet.ErrorKindIllegalArgument, "no such field: "+name)
		return
	}
	dims := make([]uint32, len(f.Dims))
	for i, d := range f.Dims {
		dims[i] = uint32(d)
	}
	resp, _ := wire.MarshalFieldTypeInfo(wire.FieldTypeInfo{
		Datatype:      uint32(f.Datatype),
		NumDimensions: uint32(len(dims)),
		Dimensions:    dims,
	})
	_ = s.writeMessage(conn, mxnet.OpGetFieldType|mxnet.ResponseFlag, 0, 0, msgID, resp)
}

func (s *Server) handleGetArrayByName(conn net.Conn, msgID, dataType uint32, body []byte) {
	name := string(body)
	s.replyGet(conn, mxnet.OpGetArrayByName, msgID, name)
}

func (s *Server) handleGetArrayByHandle(conn net.Conn, msgID, dataType uint32, body []byte) {
	if len(body) < 8 {
		s.errorReply(conn, mxnet.OpGetArrayByHandle, msgID, mxnet.ErrorKindIllegalArgument, "short handle body")
		return
	}
	rh := binary.BigEndian.Uint32(body[0:4])
	fh := binary.BigEndian.Uint32(body[4:8])
	name, ok := s.nameForHandle(rh, fh)
	if !ok {
		s.errorReply(conn, mxnet.OpGetArrayByHandle, msgID, mxnet.ErrorKindBadHandle, "stale handle")
		return
	}
	s.replyGet(conn, mxnet.OpGetArrayByHandle, msgID, name)
}

func (s *Server) nameForHandle(rh, fh uint32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, f := range s.fields {
		if f.RecordHandle == rh && f.FieldHandle == fh {
			return name, true
		}
	}
	return "", false
}

func (s *Server) replyGet(conn net.Conn, opcode, msgID uint32, name string) {
	f, ok := s.fieldByName(name)
	if !ok {
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindIllegalArgument, "no such field: "+name)
		return
	}
	s.mu.Lock()
	format := s.format
	s.mu.Unlock()
	codec, err := wire.CodecFor(format)
	if err != nil {
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindUnsupported, err.Error())
		return
	}
	buf := make([]byte, 4096)
	n, err := codec.Encode(f.Value, buf, false)
	if err != nil {
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindCorruptDataStructure, err.Error())
		return
	}
	_ = s.writeMessage(conn, opcode|mxnet.ResponseFlag, 0, uint32(f.Datatype), msgID, buf[:n])
}

func (s *Server) handlePutArrayByName(conn net.Conn, msgID, dataType uint32, body []byte) {
	nul := indexByte(body, 0)
	if nul < 0 {
		s.errorReply(conn, mxnet.OpPutArrayByName, msgID, mxnet.ErrorKindIllegalArgument, "missing name terminator")
		return
	}
	name := string(body[:nul])
	s.applyPut(conn, mxnet.OpPutArrayByName, msgID, name, dataType, body[nul+1:])
}

func (s *Server) handlePutArrayByHandle(conn net.Conn, msgID, dataType uint32, body []byte) {
	if len(body) < 8 {
		s.errorReply(conn, mxnet.OpPutArrayByHandle, msgID, mxnet.ErrorKindIllegalArgument, "short handle body")
		return
	}
	rh := binary.BigEndian.Uint32(body[0:4])
	fh := binary.BigEndian.Uint32(body[4:8])
	name, ok := s.nameForHandle(rh, fh)
	if !ok {
		s.errorReply(conn, mxnet.OpPutArrayByHandle, msgID, mxnet.ErrorKindBadHandle, "stale handle")
		return
	}
	s.applyPut(conn, mxnet.OpPutArrayByHandle, msgID, name, dataType, body[8:])
}

func (s *Server) applyPut(conn net.Conn, opcode, msgID uint32, name string, dataType uint32, encoded []byte) {
	f, ok := s.fieldByName(name)
	if !ok {
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindIllegalArgument, "no such field: "+name)
		return
	}
	s.mu.Lock()
	format := s.format
	s.mu.Unlock()
	codec, err := wire.CodecFor(format)
	if err != nil {
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindUnsupported, err.Error())
		return
	}
	v, err := codec.Decode(encoded, wire.Datatype(dataType), f.Dims, false)
	if err != nil {
		s.errorReply(conn, opcode, msgID, mxnet.ErrorKindCorruptDataStructure, err.Error())
		return
	}
	s.mu.Lock()
	f.Value = v
	s.mu.Unlock()
	_ = s.writeMessage(conn, opcode|mxnet.ResponseFlag, 0, 0, msgID, nil)
}

func (s *Server) handleGetAttribute(conn net.Conn, msgID uint32, body []byte) {
	nul := indexByte(body, 0)
	if nul < 0 {
		s.errorReply(conn, mxnet.OpGetAttribute, msgID, mxnet.ErrorKindIllegalArgument, "missing name terminator")
		return
	}
	av, err := wire.UnmarshalAttributeValue(body[nul+1:])
	if err != nil {
		s.errorReply(conn, mxnet.OpGetAttribute, msgID, mxnet.ErrorKindCorruptDataStructure, err.Error())
		return
	}
	resp, _ := wire.MarshalAttributeValue(wire.AttributeValue{AttributeID: av.AttributeID, Value: 0})
	_ = s.writeMessage(conn, mxnet.OpGetAttribute|mxnet.ResponseFlag, 0, 0, msgID, resp)
}

func (s *Server) handleAddCallback(conn net.Conn, msgID uint32, body []byte) {
	reg, err := wire.UnmarshalCallbackRegistration(body)
	if err != nil {
		s.errorReply(conn, mxnet.OpAddCallback, msgID, mxnet.ErrorKindCorruptDataStructure, err.Error())
		return
	}
	s.mu.Lock()
	id := s.nextCBID
	s.nextCBID++
	s.mu.Unlock()
	reg.CallbackID = id
	resp, _ := wire.MarshalCallbackRegistration(reg)
	_ = s.writeMessage(conn, mxnet.OpAddCallback|mxnet.ResponseFlag, 0, 0, msgID, resp)
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
