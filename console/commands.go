package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"smart_apartment/config"
	"smart_apartment/database"
	"smart_apartment/models"
	"smart_apartment/services"
)

// ContainerFactory собирает сервисы для команд
type ContainerFactory func() (*services.Container, error)

// DefaultContainer загружает конфигурацию и открывает то же хранилище, что и веб-приложение
func DefaultContainer() (*services.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	store, db, err := database.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	redisClient, err := database.InitRedis(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ %v\n", err)
	}
	return services.NewContainer(cfg, store, db, redisClient), nil
}

// NewRootCmd создает корневую команду smart-apartment
func NewRootCmd(factory ContainerFactory, in io.Reader) *cobra.Command {
	var container *services.Container

	load := func(cmd *cobra.Command, args []string) error {
		if container != nil {
			return nil
		}
		var err error
		container, err = factory()
		return err
	}

	runMenu := func(cmd *cobra.Command, args []string) error {
		c := New(in, cmd.OutOrStdout(), container.Equipment, container.Maintenance, container.Audit)
		return c.Run(cmd.Context())
	}

	rootCmd := &cobra.Command{
		Use:               "smart-apartment",
		Short:             "Smart Apartment equipment management console",
		Long:              `Console for registering equipment, reporting faults, performing maintenance and running the daily audit.`,
		SilenceUsage:      true,
		PersistentPreRunE: load,
		RunE:              runMenu,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "menu",
		Short: "Interactive numbered menu",
		RunE:  runMenu,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "audit",
		Short: "Run the daily audit now",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := New(in, cmd.OutOrStdout(), container.Equipment, container.Maintenance, container.Audit)
			return c.RunAudit(cmd.Context())
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show the manager dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := New(in, cmd.OutOrStdout(), container.Equipment, container.Maintenance, container.Audit)
			return c.ShowDashboard(cmd.Context())
		},
	})

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List equipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if status == "" {
				c := New(in, cmd.OutOrStdout(), container.Equipment, container.Maintenance, container.Audit)
				return c.ViewInventory(ctx)
			}
			return listByStatus(ctx, cmd.OutOrStdout(), container.Equipment, status)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "filter by status (Active, Faulty, UnderRepair)")
	rootCmd.AddCommand(listCmd)

	return rootCmd
}

func listByStatus(ctx context.Context, out io.Writer, equipment *services.EquipmentService, raw string) error {
	status, err := models.ParseEquipmentStatus(raw)
	if err != nil {
		return err
	}
	items, err := equipment.ListByStatus(ctx, status)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Fprintf(out, "%s | %s | ", item.ID, item.Describe())
		statusColor(item.Status).Fprintf(out, "%s", item.Status)
		fmt.Fprintf(out, " | %s\n", item.Location)
	}
	return nil
}
