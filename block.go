// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

// nameLen bounds the inline name buffer, matching spec.md §3's
// "small inline buffer, length-bounded" requirement for a block's name.
const nameLen = 64

// BlockBase is the common base every block type embeds. It carries the
// block's stable name; input channels and block-specific state are
// ordinary fields of the embedding type.
//
// Example:
//
//	type Gain struct {
//	    cler.BlockBase
//	    In   cler.Channel[float32]
//	    Mult float32
//	}
//
//	g := Gain{BlockBase: cler.NewBlockBase("gain"), In: in, Mult: 2.0}
type BlockBase struct {
	name [nameLen]byte
	nlen uint8
}

// NewBlockBase constructs a BlockBase with the given name. The name is
// truncated to nameLen-1 bytes if longer.
func NewBlockBase(name string) BlockBase {
	var b BlockBase
	n := len(name)
	if n > nameLen-1 {
		n = nameLen - 1
	}
	copy(b.name[:], name[:n])
	b.nlen = uint8(n)
	return b
}

// Name returns the block's stable name.
func (b *BlockBase) Name() string {
	return string(b.name[:b.nlen])
}

// Block0 is a block with no output channels, typically a sink: Procedure
// takes no output channels — it is called purely to let the runner
// observe a fatal error or drive a no-output block's side effects.
// Sources implement [Block1]..[Block4] instead; Block0 exists for pure
// sinks with no outputs of their own (see spec.md §4.D, "sinks take no
// output channel parameters").
type Block0 interface {
	Name() string
	Procedure() Result[Empty]
}

// Block1 is a block with exactly one output channel.
type Block1[O1 any] interface {
	Name() string
	Procedure(out1 Channel[O1]) Result[Empty]
}

// Block2 is a block with exactly two output channels.
type Block2[O1, O2 any] interface {
	Name() string
	Procedure(out1 Channel[O1], out2 Channel[O2]) Result[Empty]
}

// Block3 is a block with exactly three output channels.
type Block3[O1, O2, O3 any] interface {
	Name() string
	Procedure(out1 Channel[O1], out2 Channel[O2], out3 Channel[O3]) Result[Empty]
}

// Block4 is a block with exactly four output channels.
type Block4[O1, O2, O3, O4 any] interface {
	Name() string
	Procedure(out1 Channel[O1], out2 Channel[O2], out3 Channel[O3], out4 Channel[O4]) Result[Empty]
}
