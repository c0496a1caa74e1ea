package mxnet

import "github.com/openmx/mxnet/pkg/mxnet/wire"

func codecFor(f DataFormat) (wire.Codec, error) {
	return wire.CodecFor(f.wireFormat())
}
