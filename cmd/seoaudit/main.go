// Package main provides the seoaudit CLI.
//
// seoaudit submits pages to a remote SEO audit API, follows the job until it
// finishes and renders the scored result.
//
// Usage:
//
//	seoaudit audit <url>
//	seoaudit serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
