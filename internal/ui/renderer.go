package ui

import (
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/tasks"
)

var _ tasks.Renderer = (*ChannelRenderer)(nil)

// ChannelRenderer hands rendered trip collections to the TUI event loop.
//
// Only the latest collection is kept: a render that finds an undelivered one replaces it, so
// RenderTrips never blocks the synchronizer.
type ChannelRenderer struct {
	ch chan []models.Trip
}

func NewChannelRenderer() *ChannelRenderer {
	return &ChannelRenderer{ch: make(chan []models.Trip, 1)}
}

func (r *ChannelRenderer) RenderTrips(trips []models.Trip) {
	for {
		select {
		case r.ch <- trips:
			return
		default:
		}
		select {
		case <-r.ch:
		default:
		}
	}
}

// Trips returns the receive side read by the model.
func (r *ChannelRenderer) Trips() <-chan []models.Trip {
	return r.ch
}
