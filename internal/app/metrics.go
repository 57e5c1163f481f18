package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gamesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tictactoe_games_created_total",
		Help: "Total games created",
	})

	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tictactoe_moves_total",
		Help: "Cell clicks by whether the move was applied or ignored",
	}, []string{"result"})

	gamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tictactoe_games_finished_total",
		Help: "Moves that decided a game, by outcome",
	}, []string{"outcome"})

	activeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tictactoe_subscribers",
		Help: "Open snapshot subscriptions",
	})

	droppedSubscribers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tictactoe_subscribers_dropped_total",
		Help: "Subscribers dropped for not keeping up",
	})
)
