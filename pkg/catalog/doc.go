/*
Package catalog discovers and scaffolds motion directories.

A motion directory holds one template pair, whose name fixes the naming convention of
every motion in it:

	xxx-template.add.sql    version pattern "xxx", separator "-", extension ".sql"
	xxx-template.sub.sql
	001-create-users.add.sql
	001-create-users.sub.sql
	002-add-email.add.sql
	002-add-email.sub.sql

Version patterns may have several dot-separated components ("x.x.xx" matches
"3.2.01"). Every error returned by this package wraps domain.ErrInvalidCatalog.
*/
package catalog
