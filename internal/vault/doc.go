// Package vault is a markdown-directory implementation of engine.Engine.
//
// An Index scans every markdown file under a root directory, records page
// metadata (frontmatter, tags, file times) and the nested list items of each
// page, and answers queries written in a small expression language:
//
//	@task and childof(@page and path("Projects") and status = "active") and $completed = false
//
// Pages expose $path, $name, $folder, $tags, $mtime, $ctime and $size plus
// their frontmatter keys. List items expose $completed, $text, $line,
// $status, $path, $parentLine and $tags. Watch keeps the index current with
// fsnotify and fires index-updated notifications after every reindex.
package vault
