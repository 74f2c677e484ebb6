package services

// ServiceContainer is what the HTTP layer, the scheduler and the CLI are wired against.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	UserRate     UserRateSvc
}
