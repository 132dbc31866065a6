package mocks

//go:generate mockgen -source=../llm/provider.go -destination=./llm_mocks.go -package=mocks
//go:generate mockgen -source=../social/publisher.go -destination=./social_mocks.go -package=mocks

// This file contains go:generate directives for the gomock mocks.
// The hand-written scheduler mock lives in internal/scheduler/schedulertest
// because the scheduler package depends on autopost, whose tests use this package.
