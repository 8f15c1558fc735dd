// Package providers groups the components that plug into the share service
// and the tool registry.
//
// Available Providers:
//   - share: the share operations as registry tools (share.folder_contents,
//     share.file_text, share.search, ...)
//   - metadata: MIME, image and EXIF metadata for share.GetMetadata
//
// Provider Interface:
//   - Definition(): Returns service metadata and tool definitions
//   - Execute(): Executes a tool with parameters and context
//
// Example Usage:
//
//	registry.Register(share.NewProvider(svc, logger))
//	result, err := registry.Execute(ctx, "share.folder_contents", params, appCtx)
package providers
