// Package markdown turns markdown documents with YAML frontmatter into
// content write requests. A loader discovers files on an fs.FS, a goldmark
// renderer produces the HTML body, and the importer maps each document group
// onto the content service's create-or-replace flow.
package markdown
