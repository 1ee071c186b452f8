// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler_test

import (
	"code.hybscloud.com/cler"
)

// gainBlock multiplies every sample read from In by Mult and writes it to
// its single output channel, workSize samples at a time. Signature shape
// grounded on original_source/src/blocks/gain.hpp's GainBlock; the DSP
// content (a scalar multiply) is illustrative only.
type gainBlock struct {
	cler.BlockBase
	In       cler.Channel[float32]
	Mult     float32
	workSize int
	tmp      []float32
}

func newGainBlock(name string, in cler.Channel[float32], mult float32, workSize int) *gainBlock {
	return &gainBlock{
		BlockBase: cler.NewBlockBase(name),
		In:        in,
		Mult:      mult,
		workSize:  workSize,
		tmp:       make([]float32, workSize),
	}
}

func (g *gainBlock) Procedure(out cler.Channel[float32]) cler.Result[cler.Empty] {
	if g.In.Size() < g.workSize {
		return cler.Err[cler.Empty](cler.ErrNotEnoughSamples)
	}
	if out.Space() < g.workSize {
		return cler.Err[cler.Empty](cler.ErrNotEnoughSpace)
	}
	n := g.In.ReadN(g.tmp)
	for i := 0; i < n; i++ {
		g.tmp[i] *= g.Mult
	}
	out.WriteN(g.tmp[:n])
	return cler.OkEmpty()
}

// addBlock sums one sample from each of its input channels, fan-in style.
// Grounded on original_source/src/blocks/add.hpp's AddBlock.
type addBlock struct {
	cler.BlockBase
	Ins []cler.Channel[float32]
}

func newAddBlock(name string, ins ...cler.Channel[float32]) *addBlock {
	return &addBlock{BlockBase: cler.NewBlockBase(name), Ins: ins}
}

func (a *addBlock) Procedure(out cler.Channel[float32]) cler.Result[cler.Empty] {
	if out.Space() < 1 {
		return cler.Err[cler.Empty](cler.ErrNotEnoughSpace)
	}
	for _, in := range a.Ins {
		if in.Size() < 1 {
			return cler.Err[cler.Empty](cler.ErrNotEnoughSamples)
		}
	}
	var sum float32
	for _, in := range a.Ins {
		v, _ := in.TryPop()
		sum += v
	}
	out.Push(sum)
	return cler.OkEmpty()
}

// sourceBlock pushes a fixed, finite sequence of samples to its output,
// one per Step call, then reports KindChannelClosed once exhausted — a
// minimal stand-in for a hardware/file source block.
type sourceBlock struct {
	cler.BlockBase
	values []float32
	pos    int
}

func newSourceBlock(name string, values []float32) *sourceBlock {
	return &sourceBlock{BlockBase: cler.NewBlockBase(name), values: values}
}

func (s *sourceBlock) Procedure(out cler.Channel[float32]) cler.Result[cler.Empty] {
	if s.pos >= len(s.values) {
		return cler.Err[cler.Empty](cler.NewError(cler.KindChannelClosed, nil))
	}
	if !out.Push(s.values[s.pos]) {
		return cler.Err[cler.Empty](cler.ErrNotEnoughSpace)
	}
	s.pos++
	return cler.OkEmpty()
}

// sinkBlock pops every available sample from In and appends it to Got.
type sinkBlock struct {
	cler.BlockBase
	In  cler.Channel[float32]
	Got []float32
}

func newSinkBlock(name string, in cler.Channel[float32]) *sinkBlock {
	return &sinkBlock{BlockBase: cler.NewBlockBase(name), In: in}
}

func (s *sinkBlock) Procedure() cler.Result[cler.Empty] {
	for {
		v, ok := s.In.TryPop()
		if !ok {
			break
		}
		s.Got = append(s.Got, v)
	}
	return cler.OkEmpty()
}
