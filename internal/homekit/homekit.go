// Package homekit presents an accessory to HomeKit as a fan with a GPU
// temperature sensor. Values are pulled on demand through remote-get
// handlers; nothing is pushed.
package homekit

import (
	"context"

	"codeberg.org/mutker/gpufanbridge/internal/accessory"
	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"github.com/brutella/hc"
	hcaccessory "github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

const temperatureServiceName = "GPU temperature"

// Characteristics is what the host may ask of the accessory
type Characteristics interface {
	Info() accessory.Info
	On() bool
	SetOn(value bool)
	RotationSpeed() float64
	SetRotationSpeed(value float64)
	Temperature() float64
}

// Fan is the hc accessory tree built for one gpufanbridge accessory
type Fan struct {
	*hcaccessory.Accessory
	Fan           *service.Fan
	RotationSpeed *characteristic.RotationSpeed
	Temperature   *service.TemperatureSensor
}

// NewFan builds the services and binds every characteristic to src
func NewFan(src Characteristics) *Fan {
	info := src.Info()

	f := &Fan{}
	f.Accessory = hcaccessory.New(hcaccessory.Info{
		Name:         info.Name,
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		SerialNumber: info.Serial,
	}, hcaccessory.TypeFan)

	f.Fan = service.NewFan()
	f.Fan.On.OnValueRemoteGet(src.On)
	f.Fan.On.OnValueRemoteUpdate(src.SetOn)

	f.RotationSpeed = characteristic.NewRotationSpeed()
	f.RotationSpeed.OnValueRemoteGet(src.RotationSpeed)
	f.RotationSpeed.OnValueRemoteUpdate(src.SetRotationSpeed)
	f.Fan.AddCharacteristic(f.RotationSpeed.Characteristic)

	f.Temperature = service.NewTemperatureSensor()
	name := characteristic.NewName()
	name.SetValue(temperatureServiceName)
	f.Temperature.AddCharacteristic(name.Characteristic)
	f.Temperature.CurrentTemperature.OnValueRemoteGet(src.Temperature)

	f.AddService(f.Fan.Service)
	f.AddService(f.Temperature.Service)

	return f
}

type Server struct {
	cfg    Config
	fan    *Fan
	logger logger.Logger
}

func New(cfg Config, src Characteristics, log logger.Logger) (*Server, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if src == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "HomeKit server needs an accessory")
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Server{
		cfg:    cfg,
		fan:    NewFan(src),
		logger: log,
	}, nil
}

// Run serves the accessory over the HAP IP transport until ctx is done
func (s *Server) Run(ctx context.Context) error {
	transport, err := hc.NewIPTransport(hc.Config{
		Pin:         s.cfg.Pin,
		StoragePath: s.cfg.StoragePath,
		Port:        s.cfg.Port,
	}, s.fan.Accessory)
	if err != nil {
		return errors.New().Wrap(ErrTransportFailed, err)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		<-transport.Stop()
	}()

	s.logger.Info().
		Str("accessory", s.fan.Info.Name.GetValue()).
		Str("storage_path", s.cfg.StoragePath).
		Msg("Publishing HomeKit accessory")

	transport.Start()
	<-stopped

	s.logger.Info().Msg("HomeKit transport stopped")

	return nil
}
