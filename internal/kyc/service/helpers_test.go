package service

import (
	"os"
	"path/filepath"
)

func removePersona(env *testEnv, individualID string) error {
	return os.Remove(filepath.Join(env.personaDir, individualID+".json"))
}
