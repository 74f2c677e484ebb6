package repositories

// RepositoryProvider bundles the stores handed to NewServiceContainer.
type RepositoryProvider struct {
	ExchangeRateRepo ExchangeRateRepositoryFacade
}
