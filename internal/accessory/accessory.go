// Package accessory ties one state store and its poller to the
// read-only characteristics presented to the host framework.
//
// Reads are answered from the store and never touch the network. Write
// requests from the host are accepted and logged, but nothing is sent
// to the hardware: the accessory is telemetry shaped as a fan.
package accessory

import (
	"context"
	"sync"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/poller"
	"codeberg.org/mutker/gpufanbridge/internal/state"
)

const (
	DefaultName         = "GPU Fan"
	DefaultManufacturer = "AIDA64"
	DefaultModel        = "GPU"
	DefaultSerial       = "0001"
)

// Info describes the accessory to the host
type Info struct {
	Name         string
	Manufacturer string
	Model        string
	Serial       string
}

func DefaultInfo() Info {
	return Info{
		Name:         DefaultName,
		Manufacturer: DefaultManufacturer,
		Model:        DefaultModel,
		Serial:       DefaultSerial,
	}
}

// Reader is the read side of the state store
type Reader interface {
	Read() state.AccessoryState
}

// Runner is the lifecycle side of the poller
type Runner interface {
	Start(ctx context.Context) error
	Stop()
	Stats() poller.Stats
}

type Accessory struct {
	info   Info
	store  Reader
	runner Runner
	logger logger.Logger

	closeOnce sync.Once
}

func New(info Info, store Reader, runner Runner, log logger.Logger) (*Accessory, error) {
	if store == nil || runner == nil {
		return nil, errors.New().WithMessage(errors.ErrInvalidArgument, "Accessory needs a store and a poller")
	}
	if log == nil {
		log = logger.Nop()
	}
	if info.Name == "" {
		info.Name = DefaultName
	}

	return &Accessory{
		info:   info,
		store:  store,
		runner: runner,
		logger: log,
	}, nil
}

func (a *Accessory) Info() Info {
	return a.info
}

// Start begins polling on behalf of this accessory
func (a *Accessory) Start(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return errors.New().Wrap(errors.ErrRunAccessory, err)
	}
	return nil
}

// Close tears the accessory down, cancelling its timer exactly once
func (a *Accessory) Close() {
	a.closeOnce.Do(func() {
		a.runner.Stop()
		a.logger.Info().Str("accessory", a.info.Name).Msg("Accessory removed")
	})
}

// State returns the last committed readings
func (a *Accessory) State() state.AccessoryState {
	return a.store.Read()
}

// Stats exposes poll cycle counters
func (a *Accessory) Stats() poller.Stats {
	return a.runner.Stats()
}

// On is a computed view: a non-negative rotation speed reads as on.
func (a *Accessory) On() bool {
	on := a.store.Read().Powered()
	a.logger.Debug().Bool("value", on).Msg("Get characteristic On")
	return on
}

// SetOn is accepted but has no effect on the hardware
func (a *Accessory) SetOn(value bool) {
	a.logger.Debug().Bool("value", value).Msg("Set characteristic On (ignored, read-only accessory)")
}

func (a *Accessory) RotationSpeed() float64 {
	speed := a.store.Read().RotationSpeed
	a.logger.Debug().Float64("value", speed).Msg("Get characteristic RotationSpeed")
	return speed
}

// SetRotationSpeed is accepted but has no effect on the hardware
func (a *Accessory) SetRotationSpeed(value float64) {
	a.logger.Debug().Float64("value", value).Msg("Set characteristic RotationSpeed (ignored, read-only accessory)")
}

func (a *Accessory) Temperature() float64 {
	temp := a.store.Read().TemperatureCelsius
	a.logger.Debug().Float64("value", temp).Msg("Get characteristic CurrentTemperature")
	return temp
}
