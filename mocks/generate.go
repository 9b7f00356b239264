package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/meshetar/internal/strategy Strategy
//go:generate mockgen -destination=./mock_score_model.go -package=mocks github.com/rxtech-lab/meshetar/internal/model ScoreModel
//go:generate mockgen -destination=./mock_source.go -package=mocks github.com/rxtech-lab/meshetar/internal/datasource Source
