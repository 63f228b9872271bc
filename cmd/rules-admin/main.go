// Interactive rule-book maintenance CLI. Talks straight to PostgreSQL; the
// serving path never writes, so every edit goes through here or the seed file.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"zoning-api/internal/migrate"
	"zoning-api/internal/rules"
	"zoning-api/internal/seed"
	"zoning-api/internal/store"
	"zoning-api/internal/utils"

	"github.com/joho/godotenv"
)

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  set <zone> <use> <to_max> <tp_min> <ia_max> <front> <side> <back> [attach_one_side]")
	fmt.Println("  del <zone> <use>")
	fmt.Println("  get <zone> <use>")
	fmt.Println("  list [zone] [limit]")
	fmt.Println("  misses [hours] [limit]")
	fmt.Println("  import <path.yaml>")
	fmt.Println("  help")
	fmt.Println("  exit")
}

func prompt(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	s, _ := r.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func parseFloats(parts []string) ([]float64, error) {
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func formatRule(r *rules.ZoneRule) string {
	s := fmt.Sprintf("%s/%s to=%.1f tp=%.1f ia=%.2f recuos=%.1f/%.1f/%.1f",
		r.ZoneSigla, r.UseTypeCode, r.ToMaxPct, r.TpMinPct, r.IaMax,
		r.RecuoFrontalM, r.RecuoLateralM, r.RecuoFundosM)
	if r.AllowAttachOneSide {
		s += " attach_one_side"
	}
	if r.MaxHeightM != nil {
		s += fmt.Sprintf(" h_max=%.1f", *r.MaxHeightM)
	}
	if r.Notes != "" {
		s += " // " + r.Notes
	}
	return s
}

func main() {
	var envFile string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--env" && i+1 < len(os.Args) {
			envFile = os.Args[i+1]
			i++
		} else if strings.HasSuffix(os.Args[i], ".env") {
			envFile = os.Args[i]
		}
	}
	var st *store.Store
	var err error
	if envFile != "" {
		_ = godotenv.Load(envFile)
		if db, e := utils.OpenPostgresFromEnv(); e != nil {
			err = e
		} else {
			st = store.AttachDB(db)
		}
	} else {
		r := bufio.NewReader(os.Stdin)
		fmt.Println("enter database connection parameters, press enter for defaults")
		host := prompt(r, "PG_HOST", "127.0.0.1")
		port := prompt(r, "PG_PORT", "5432")
		user := prompt(r, "PG_USER", "postgres")
		pass := prompt(r, "PG_PASSWORD", "")
		name := prompt(r, "PG_DB", "zoning")
		ssl := prompt(r, "PG_SSLMODE", "disable")
		dsn := "postgres://" + user
		if pass != "" {
			dsn += ":" + pass
		}
		dsn += "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
		st, err = store.Open(dsn)
	}
	if err != nil {
		fmt.Println("db error:", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(st.DB()); err != nil {
		fmt.Println("schema error:", err)
		os.Exit(1)
	}
	defer st.Close()
	ctx := context.Background()
	fmt.Println("rules admin cli ready")
	printHelp()
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printHelp()
		case "set", "add":
			if len(parts) < 9 {
				fmt.Println("usage: set <zone> <use> <to_max> <tp_min> <ia_max> <front> <side> <back> [attach_one_side]")
				continue
			}
			nums, err := parseFloats(parts[3:9])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			r := &rules.ZoneRule{
				ZoneSigla:     parts[1],
				UseTypeCode:   parts[2],
				ToMaxPct:      nums[0],
				TpMinPct:      nums[1],
				IaMax:         nums[2],
				RecuoFrontalM: nums[3],
				RecuoLateralM: nums[4],
				RecuoFundosM:  nums[5],
			}
			if len(parts) >= 10 && (parts[9] == "true" || parts[9] == "attach_one_side" || parts[9] == "1") {
				r.AllowAttachOneSide = true
			}
			if err := st.UpsertRule(ctx, r); err != nil {
				fmt.Println("error:", err)
			} else {
				fmt.Println("ok")
			}
		case "del":
			if len(parts) < 3 {
				fmt.Println("usage: del <zone> <use>")
				continue
			}
			if err := st.DeleteRule(ctx, parts[1], parts[2]); err != nil {
				fmt.Println("error:", err)
			} else {
				fmt.Println("ok")
			}
		case "get":
			if len(parts) < 3 {
				fmt.Println("usage: get <zone> <use>")
				continue
			}
			r, err := st.Resolve(ctx, parts[1], parts[2])
			if errors.Is(err, rules.ErrNotFound) {
				fmt.Println("not found")
				continue
			}
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(formatRule(r))
		case "list":
			zone := ""
			limit := 50
			if len(parts) >= 2 {
				zone = parts[1]
			}
			if len(parts) >= 3 {
				if n, e := strconv.Atoi(parts[2]); e == nil && n > 0 {
					limit = n
				}
			}
			xs, err := st.ListRules(ctx, zone, limit)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if len(xs) == 0 {
				fmt.Println("none")
			}
			for i := range xs {
				fmt.Println(formatRule(&xs[i]))
			}
		case "misses":
			hours := 24
			limit := 100
			if len(parts) >= 2 {
				if n, e := strconv.Atoi(parts[1]); e == nil && n > 0 {
					hours = n
				}
			}
			if len(parts) >= 3 {
				if n, e := strconv.Atoi(parts[2]); e == nil && n > 0 {
					limit = n
				}
			}
			ks, err := st.FetchRecentMisses(ctx, hours, limit)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if len(ks) == 0 {
				fmt.Println("none")
			}
			for _, k := range ks {
				fmt.Println(k)
			}
		case "import":
			if len(parts) < 2 {
				fmt.Println("usage: import <path.yaml>")
				continue
			}
			if err := seed.Run(ctx, st, parts[1]); err != nil {
				fmt.Println("error:", err)
			} else {
				fmt.Println("ok")
			}
		default:
			fmt.Println("unknown command")
		}
	}
}
