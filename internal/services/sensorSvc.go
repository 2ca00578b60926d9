package services

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/dispatch"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/ports"
	"github.com/sirupsen/logrus"
)

var _ ports.SensorPort = (*SensorSvc)(nil)

// SensorSvc generates a random walk around a mean value.
type SensorSvc struct {
	// sensor data mean value
	mean float64
	// sensor data standard deviation value
	standardDeviation float64
	// stepSizeFactor is used when calculating the next value.
	stepSizeFactor float64
	// sensor data current value
	value float64
	rnd   *rand.Rand
}

func NewSensorSvc(mean, standardDeviation float64) *SensorSvc {
	return newSensorSvc(mean, standardDeviation, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newSensorSvc(mean, standardDeviation float64, rnd *rand.Rand) *SensorSvc {
	return &SensorSvc{
		mean:              mean,
		standardDeviation: math.Abs(standardDeviation),
		stepSizeFactor:    math.Abs(standardDeviation) / 10,
		value:             mean - rnd.Float64(),
		rnd:               rnd,
	}
}

func (s *SensorSvc) CalculateNextValue() float64 {
	// first calculate how much the value will be changed
	valueChange := s.rnd.Float64() * s.stepSizeFactor
	// second decide if the value is increased or decreased
	factor := s.DecideFactor()
	s.value += valueChange * factor
	return s.value
}

func (s *SensorSvc) DecideFactor() float64 {
	var (
		continueDirection, changeDirection float64
		distance                           float64 // the distance from the mean.
	)
	if s.value > s.mean {
		distance = s.value - s.mean
		continueDirection = 1
		changeDirection = -1
	} else {
		distance = s.mean - s.value
		continueDirection = -1
		changeDirection = 1
	}
	// Half the standard deviation is a 50/50 chance at the mean, the
	// further away the more likely the walk turns back.
	chance := (s.standardDeviation / 2) - (distance / 50)
	randomValue := s.standardDeviation * s.rnd.Float64()
	if randomValue < chance {
		return continueDirection
	}
	return changeDirection
}

// SensorPublisher pushes generated values into a variable on the event loop.
type SensorPublisher struct {
	NodeID model.NodeID
	Name   string
	Delay  time.Duration
	sensor ports.SensorPort
}

func NewSensorPublisher(id model.NodeID, name string, delay time.Duration, sensor ports.SensorPort) *SensorPublisher {
	return &SensorPublisher{NodeID: id, Name: name, Delay: delay, sensor: sensor}
}

// Publish computes the next value and posts the write to the loop.
func (p *SensorPublisher) Publish(loop dispatch.Scheduler, svc *AddressSpaceSvc, status *model.StatusTable, logger *logrus.Logger) {
	value := p.sensor.CalculateNextValue()
	loop.Post(func() {
		code := svc.WriteValue(p.NodeID, value)
		if code.IsGood() {
			logger.WithFields(logrus.Fields{
				"category": "application",
				"Sensor":   p.Name,
				"Value":    value,
			}).Debugln("Sensor value published 🔔")
			return
		}
		name, desc := status.Describe(code)
		logger.WithFields(logrus.Fields{
			"category":    "application",
			"Sensor":      p.Name,
			"Status":      name,
			"Description": desc,
		}).Warnln("Sensor value rejected ⛔")
	})
}

// Run publishes every Delay until ctx is done.
func (p *SensorPublisher) Run(ctx context.Context, loop dispatch.Scheduler, svc *AddressSpaceSvc, status *model.StatusTable, logger *logrus.Logger) {
	ticker := time.NewTicker(p.Delay)
	defer ticker.Stop()
	p.Publish(loop, svc, status, logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Publish(loop, svc, status, logger)
		}
	}
}
