/*
The transfer package implements bnd's upload of validated sessions to the
remote data root.

A session's files on the local data root are SourceFiles. Each one is
uploaded to the same relative path under the remote data root.

Uploads only ever add files. A remote file that's identical to its source is
skipped, so uploads can be re-run after a failure. A remote file that differs
from its source is a conflict, and is left untouched for a person to resolve.

Every copy is written to a temporary file next to its destination and only
renamed into place after its hash matches the source. A half-written file
therefore never appears under its final name on the remote.

The upload only deals with files. Empty directories aren't uploaded.
*/
package transfer
