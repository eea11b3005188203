package cache

// Key names one cached query result
type Key string

func FoldersInWorkspace(workspaceID string) Key {
	return Key("folders/workspace/" + workspaceID)
}

func FoldersInRepository(repositoryID string) Key {
	return Key("folders/repository/" + repositoryID)
}

func AssetsInWorkspace(workspaceID string) Key {
	return Key("assets/workspace/" + workspaceID)
}

func AssetsInRepository(repositoryID string) Key {
	return Key("assets/repository/" + repositoryID)
}

// AssetsInFolder keys the assets directly inside a folder.
// An empty folderID keys the repository root bucket.
func AssetsInFolder(repositoryID, folderID string) Key {
	if folderID == "" {
		return Key("assets/folder/" + repositoryID + "/root")
	}
	return Key("assets/folder/" + folderID)
}
