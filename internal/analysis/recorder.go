package analysis

import (
	"time"

	domain "statflow/domain/analysis"
	"statflow/ports"
)

// Recorder receives run lifecycle measurements
type Recorder interface {
	RunStarted(kind domain.Kind)
	RunFinished(kind domain.Kind, status domain.RunStatus, elapsed time.Duration)
	RunDiscarded(kind domain.Kind)
}

type nopRecorder struct{}

func (nopRecorder) RunStarted(domain.Kind)                                   {}
func (nopRecorder) RunFinished(domain.Kind, domain.RunStatus, time.Duration) {}
func (nopRecorder) RunDiscarded(domain.Kind)                                 {}

type nopPublisher struct{}

func (nopPublisher) Publish(ports.ScreenEvent) {}
