// Package service provides the tool registry that exposes the share to programmatic clients.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//
// Features:
//   - Thread-safe registration with unique service IDs
//   - Category filtering and intent-based discovery
//   - Tool lookup before execution ("service.tool" IDs)
//
// Example Usage:
//
//	registry := service.NewRegistry(logger)
//	registry.Register(share.NewProvider(svc, logger))
//	result, err := registry.Execute(ctx, "share.folder_contents", params, appCtx)
package service
