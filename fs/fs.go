// Package appfs embeds the files the binaries need at runtime:
// DB migrations, email templates, translation dictionaries and the common passwords list.
package appfs

import "embed"

//go:embed migrations templates templates/email/_base.gohtml templates/email/_base.txt i18n common-passwords.txt
var FS embed.FS
