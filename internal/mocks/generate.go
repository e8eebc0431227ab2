package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/game --output domain/game --outpkg gamemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/post --output domain/post --outpkg postmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/account --output domain/account --outpkg accountmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/team --output domain/team --outpkg teammock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name WatermarkRepository --dir ../domain/crawl --output domain/crawl --outpkg crawlmock --filename watermark_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ListRepository --dir ../domain/crawl --output domain/crawl --outpkg crawlmock --filename list_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/jobscheduler --output domain/jobscheduler --outpkg jobschedulermock --filename repository_mock.go
