package mocks

//go:generate -command mockgen mockgen -package=mocks
//go:generate mockgen -destination=./advisoryprovider_mock.go github.com/kennethkcox/depguard AdvisoryProvider
//go:generate mockgen -destination=./ecosystemparser_mock.go github.com/kennethkcox/depguard EcosystemParser
//go:generate mockgen -destination=./transitiveresolver_mock.go github.com/kennethkcox/depguard TransitiveResolver
