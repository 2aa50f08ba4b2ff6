package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sdrxgo/sdrx/internal/alsaout"
	"github.com/sdrxgo/sdrx/internal/audio"
	"github.com/sdrxgo/sdrx/internal/config"
	"github.com/sdrxgo/sdrx/internal/device"
	"github.com/sdrxgo/sdrx/internal/fir"
	"github.com/sdrxgo/sdrx/internal/logx"
	"github.com/sdrxgo/sdrx/internal/msd"
	"github.com/sdrxgo/sdrx/internal/ring"
)

// blockMeta accompanies every channelized IQ block committed to the CRB.
type blockMeta struct {
	streaming bool
	powerDBFS float32
	ts        time.Time
}

// pipeline wires a device.Manager through one MSD per channel into a shared
// CRB, and an ALSA sink consuming the CRB at the audio period cadence --
// the Go-native arrangement of sdrx's dongle/squelch/output threads.
type pipeline struct {
	log      logx.Logger
	settings *config.Settings
	dev      device.Manager

	channels []*audio.Channel
	decims   []*msd.MSD
	scratch  [][]complex64 // one exact-capacity decimation scratch buffer per channel, reused each callback
	numChans int

	crb  *ring.CRB[complex64, blockMeta]
	proc *audio.Processor
	sink *alsaout.Sink

	stereoFilter *fir.Stereo

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statusTick int // counts periods between status-line prints
}

// newPipeline builds every per-channel DSP stage, the shared CRB, and the
// ALSA sink for the given settings and opened device.
func newPipeline(ctx context.Context, settings *config.Settings, dev device.Manager) (*pipeline, error) {
	stages, err := msd.StagesForRate(settings.Rate.Hz())
	if err != nil {
		return nil, err
	}

	passband := msd.ChannelShapeFilter()

	p := &pipeline{
		log:      logx.New("pipeline"),
		settings: settings,
		dev:      dev,
		numChans: len(settings.Channels),
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	for _, c := range settings.Channels {
		offset, err := config.ChannelOffset(c.Name, settings.TunerFq)
		if err != nil {
			return nil, err
		}
		offsetHz := int32(offset) * 8333

		translator := msd.GenerateTranslator(settings.Rate.Hz(), offsetHz, stages[0].M)
		p.decims = append(p.decims, msd.New(translator, stages))

		ch, err := audio.NewChannel(c.Name, c.Mod, c.SqlLevel, c.Pos, nil, passband)
		if err != nil {
			return nil, fmt.Errorf("pipeline: building channel %q: %w", c.Name, err)
		}
		p.channels = append(p.channels, ch)
		p.scratch = append(p.scratch, make([]complex64, 0, audio.PeriodLen))
	}

	p.proc = audio.NewProcessor(p.channels)
	p.stereoFilter = fir.NewStereo(passband)

	sink, err := alsaout.Open(settings.AudioDevice)
	if err != nil {
		return nil, err
	}
	p.sink = sink

	p.crb = ring.New[complex64, blockMeta](8, func() []complex64 {
		return make([]complex64, audio.PeriodLen*p.numChans)
	})

	return p, nil
}

// Run configures and starts the device, then blocks servicing the audio
// sink until the context is cancelled.
func (p *pipeline) Run() error {
	if err := p.configureDevice(); err != nil {
		return err
	}

	p.dev.Subscribe(p.onBlock)
	if err := p.dev.Start(); err != nil {
		return fmt.Errorf("pipeline: starting device: %w", err)
	}

	p.wg.Add(1)
	go p.audioLoop()

	<-p.ctx.Done()
	return p.Stop()
}

// Stop cancels the pipeline's context, stops the device, drains and closes
// the ALSA sink, and waits for the audio loop to exit.
func (p *pipeline) Stop() error {
	p.cancel()
	if err := p.dev.Stop(); err != nil {
		p.log.Warnf("stopping device: %s", err)
	}
	p.wg.Wait()

	if err := p.sink.Drain(); err != nil {
		p.log.Warnf("draining audio sink: %s", err)
	}
	return p.sink.Close()
}

func (p *pipeline) configureDevice() error {
	if err := p.dev.SetFq(p.settings.TunerFq); err != nil {
		return err
	}

	switch p.settings.GainMode {
	case config.GainSplit:
		if err := p.dev.SetLnaGain(p.settings.LnaGainIdx); err != nil {
			return err
		}
		if err := p.dev.SetMixGain(p.settings.MixGainIdx); err != nil {
			return err
		}
		if err := p.dev.SetVgaGain(p.settings.VgaGainIdx); err != nil {
			return err
		}
	default:
		if err := p.dev.SetGain(p.settings.CompositeGain); err != nil {
			return err
		}
	}
	return nil
}

// onBlock runs on the device manager's own worker goroutine: it channelizes
// the raw baseband block through each channel's MSD and commits the result
// to the CRB. It must never block for long.
func (p *pipeline) onBlock(iq []complex64, info device.BlockInfo) {
	chunk, ok := p.crb.AcquireWrite()
	if !ok {
		p.log.Warnf("CRB full, dropping a %d-sample block", len(iq))
		return
	}

	for i, dec := range p.decims {
		dst := chunk.Buf[i*audio.PeriodLen : (i+1)*audio.PeriodLen]
		got := dec.Decimate(iq, p.scratch[i][:0])
		n := copy(dst, got)
		// If the block yields fewer than PeriodLen outputs for this
		// channel, zero-fill the rest of its slot.
		for j := n; j < audio.PeriodLen; j++ {
			dst[j] = 0
		}
	}

	chunk.Meta = blockMeta{streaming: info.Streaming, powerDBFS: info.PowerDBFS, ts: info.Timestamp}
	p.crb.CommitWrite()
	p.crb.SetStreaming(info.Streaming)
}

// audioLoop is the consumer side: it waits for the ALSA device to want
// another period, pulls the next channelized block (or plays silence on
// underrun), mixes it down, filters it, and writes it out.
func (p *pipeline) audioLoop() {
	defer p.wg.Done()

	silence := make([]float32, 2*audio.PeriodLen)

	for {
		if err := p.sink.WaitPeriod(1000); err != nil {
			p.log.Errorf("waiting for audio period: %s", err)
			return
		}

		select {
		case <-p.ctx.Done():
			return
		default:
		}

		chunk, ok := p.crb.AcquireRead()
		if !ok {
			if p.crb.Streaming() {
				p.log.Warnf("CRB empty, playing a period of silence")
			}
			if err := p.sink.WriteStereo(silence); err != nil {
				p.log.Errorf("writing silence: %s", err)
			}
			continue
		}

		mixed := p.proc.Run(chunk.Buf)
		p.stereoFilter.Filter(mixed, mixed)
		p.printStatus(chunk.Meta)
		p.crb.CommitRead()

		if err := p.sink.WriteStereo(mixed); err != nil {
			p.log.Errorf("writing audio: %s", err)
		}
	}
}

// printStatus prints a one-line bargraph of the current block's power every
// ten periods (320ms), mirroring alsa_write_cb's throttled status line.
func (p *pipeline) printStatus(meta blockMeta) {
	p.statusTick++
	if p.statusTick < 10 {
		return
	}
	p.statusTick = 0
	fmt.Printf("%s: Level[%s\033[1;30m%5.1f\033[0m]\n",
		meta.ts.Format("15:04:05"), audio.RenderBargraph(meta.powerDBFS), meta.powerDBFS)
}
