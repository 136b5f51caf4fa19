package proc

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/kttools/ktports/pkg/logger"
	"go.uber.org/zap"
)

// userResolver maps numeric uids to login names. It lives for a single scan.
type userResolver struct {
	run        Runner
	passwdFile string
	cache      map[uint32]string
}

func newUserResolver(run Runner, passwdFile string) *userResolver {
	return &userResolver{
		run:        run,
		passwdFile: passwdFile,
		cache:      make(map[uint32]string),
	}
}

// Lookup tries `id -nu`, then the passwd file, then gives back the decimal uid.
func (r *userResolver) Lookup(uid uint32) string {
	if name, ok := r.cache[uid]; ok {
		return name
	}
	name := r.lookupID(uid)
	if name == "" {
		name = r.lookupPasswd(uid)
	}
	if name == "" {
		name = strconv.FormatUint(uint64(uid), 10)
	}
	r.cache[uid] = name
	return name
}

func (r *userResolver) lookupID(uid uint32) string {
	out, err := r.run("id", "-nu", strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		logger.Debug("id lookup failed", zap.Uint32("uid", uid), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

func (r *userResolver) lookupPasswd(uid uint32) string {
	f, err := os.Open(r.passwdFile)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ":")
		if len(parts) < 3 {
			continue
		}
		id, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			continue
		}
		if uint32(id) == uid {
			return parts[0]
		}
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
