// Command token emite el JWT que la interfaz de escritorio presenta a la API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func main() {
	role := flag.String("role", jwt.RoleOperator, "operator o viewer")
	session := flag.String("session", "", "ID de sesión (por defecto uno nuevo)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	if !cfg.JWT.Enabled() {
		fmt.Fprintln(os.Stderr, "API_SECRET vacío: la API no exige token")
		os.Exit(1)
	}
	if *session == "" {
		*session = uuid.NewString()
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *session, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
