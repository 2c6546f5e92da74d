package lots

import "strings"

var systemFields = map[string]struct{}{
	"id": {}, "ContentType": {}, "ContentTypeId": {}, "Created": {}, "Modified": {},
	"AuthorLookupId": {}, "EditorLookupId": {}, "ComplianceAssetId": {}, "GUID": {},
	"Attachments": {}, "AppAuthor": {}, "AppEditor": {}, "AppAuthorLookupId": {},
	"AppEditorLookupId": {}, "Edit": {}, "ItemChildCount": {}, "FolderChildCount": {},
	"_UIVersionString": {}, "UIVersionString": {}, "_ModerationStatus": {},
	"_ModerationComments": {}, "_IsRecord": {}, "_Level": {}, "_Version": {},
}

var systemPrefixes = []string{"LinkTitle", "_Compliance", "@", "odata"}

// IsSystemField reports whether a list field is maintained by the list
// service and must never be sent back on create.
func IsSystemField(key string) bool {
	if _, ok := systemFields[key]; ok {
		return true
	}
	for _, p := range systemPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
