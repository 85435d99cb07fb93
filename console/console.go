package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart_apartment/models"
	"smart_apartment/services"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed)
	urgentColor  = color.New(color.FgHiRed, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
	errQuitInput = errors.New("input closed")
)

// Console интерактивное меню управляющего
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	equipment   *services.EquipmentService
	maintenance *services.MaintenanceService
	audit       *services.AuditScheduler
}

// New создает консоль поверх сервисов
func New(in io.Reader, out io.Writer, equipment *services.EquipmentService, maintenance *services.MaintenanceService, audit *services.AuditScheduler) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		equipment:   equipment,
		maintenance: maintenance,
		audit:       audit,
	}
}

type menuItem struct {
	label  string
	action func(ctx context.Context) error
}

func (c *Console) menu() []menuItem {
	return []menuItem{
		{">> VIEW DASHBOARD <<", c.ShowDashboard},
		{"Add Equipment", c.AddEquipment},
		{"View Inventory", c.ViewInventory},
		{"Report a Fault", c.ReportFault},
		{"Perform Maintenance", c.PerformMaintenance},
		{"Run Daily Audit (System)", c.RunAudit},
		{"Maintenance History", c.ShowHistory},
		{"Edit Equipment", c.EditEquipment},
		{"Delete Equipment", c.DeleteEquipment},
	}
}

// Run показывает меню, пока пользователь не выберет выход или не закончится ввод
func (c *Console) Run(ctx context.Context) error {
	items := c.menu()
	exitChoice := fmt.Sprintf("%d", len(items)+1)

	for {
		headerColor.Fprintln(c.out, "\n=== Smart Apartment System ===")
		for i, item := range items {
			fmt.Fprintf(c.out, "%d. %s\n", i+1, item.label)
		}
		fmt.Fprintf(c.out, "%s. Exit\n", exitChoice)

		choice, err := c.prompt("Select: ")
		if errors.Is(err, errQuitInput) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice == exitChoice {
			return nil
		}

		index := 0
		if _, scanErr := fmt.Sscanf(choice, "%d", &index); scanErr != nil || index < 1 || index > len(items) {
			errColor.Fprintln(c.out, "Invalid option.")
			continue
		}

		err = items[index-1].action(ctx)
		if errors.Is(err, errQuitInput) {
			return nil
		}
		if err != nil {
			c.printError(err)
		}
	}
}

// ShowDashboard выводит сводку по статусам и стоимости
func (c *Console) ShowDashboard(ctx context.Context) error {
	stats, err := c.equipment.GetStats(ctx)
	if err != nil {
		return err
	}
	value, err := c.equipment.GetTotalInventoryValue(ctx)
	if err != nil {
		return err
	}
	repairCost, err := c.maintenance.GetTotalMaintenanceCost(ctx)
	if err != nil {
		return err
	}
	faulty, err := c.equipment.GetFaultyItems(ctx)
	if err != nil {
		return err
	}

	headerColor.Fprintln(c.out, "========================================")
	headerColor.Fprintln(c.out, "      APARTMENT MANAGER DASHBOARD       ")
	headerColor.Fprintln(c.out, "========================================")
	fmt.Fprintln(c.out, " [STATUS OVERVIEW]")
	fmt.Fprintf(c.out, "  - Active Items:      %d\n", stats.Active)
	fmt.Fprintf(c.out, "  - Reported Faults:   %d", stats.Faulty)
	if stats.Faulty > 0 {
		urgentColor.Fprint(c.out, "  <-- URGENT")
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  - Under Repair:      %d\n", stats.UnderRepair)
	fmt.Fprintln(c.out, "----------------------------------------")
	fmt.Fprintln(c.out, " [PRICE DASHBOARD]")
	fmt.Fprintf(c.out, "  - Total Asset Value: $%s\n", value.StringFixed(2))
	fmt.Fprintf(c.out, "  - Total Repair Cost: $%s\n", repairCost.StringFixed(2))
	fmt.Fprintln(c.out, "========================================")

	if len(faulty) == 0 {
		okColor.Fprintln(c.out, "  [OK] No current system faults.")
		return nil
	}
	warnColor.Fprintln(c.out, " [ATTENTION REQUIRED]")
	fmt.Fprintln(c.out, "  The following items need maintenance:")
	for _, item := range faulty {
		fmt.Fprintf(c.out, "  [!] %s in %s\n", item.Name, item.Location)
		dimColor.Fprintf(c.out, "      ID: %s\n", item.ID)
	}
	return nil
}

// AddEquipment регистрирует оборудование по введенным данным
func (c *Console) AddEquipment(ctx context.Context) error {
	typeName, err := c.prompt("Type (Router, Chair, Table, Microscope or any other): ")
	if err != nil {
		return err
	}
	name, err := c.prompt("Name: ")
	if err != nil {
		return err
	}
	location, err := c.prompt("Location: ")
	if err != nil {
		return err
	}
	cost, err := c.promptDecimal("Cost: ")
	if err != nil {
		return err
	}

	item, err := c.equipment.Register(ctx, typeName, name, location, cost)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "[Success] %s added. ID: %s\n", item.Describe(), item.ID)
	return nil
}

// ViewInventory выводит все оборудование
func (c *Console) ViewInventory(ctx context.Context) error {
	items, err := c.equipment.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(c.out, "Inventory is empty.")
		return nil
	}

	headerColor.Fprintln(c.out, "--- Inventory ---")
	for _, item := range items {
		fmt.Fprintf(c.out, "%s | %s | ", item.ID, item.Describe())
		statusColor(item.Status).Fprintf(c.out, "%s", item.Status)
		fmt.Fprintf(c.out, " | %s | $%s\n", item.Location, item.InitialCost.StringFixed(2))
	}
	return nil
}

// ReportFault создает заявку на неисправность
func (c *Console) ReportFault(ctx context.Context) error {
	id, err := c.promptID("Enter Equipment ID: ")
	if err != nil {
		return err
	}
	description, err := c.prompt("Describe the problem: ")
	if err != nil {
		return err
	}

	order, err := c.maintenance.ReportFault(ctx, id, description)
	if err != nil {
		return err
	}
	warnColor.Fprintf(c.out, "[Reported] Work order %s created\n", order.ID)
	return nil
}

// PerformMaintenance обслуживает оборудование выбранной стратегией
func (c *Console) PerformMaintenance(ctx context.Context) error {
	id, err := c.promptID("Enter Equipment ID: ")
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Choose Strategy:")
	for _, name := range c.maintenance.Strategies().Names() {
		fmt.Fprintf(c.out, " - %s\n", name)
	}
	strategy, err := c.prompt("Selection: ")
	if err != nil {
		return err
	}
	if _, err := c.maintenance.Strategies().Get(strategy); err != nil {
		return err
	}

	var params services.MaintenanceParams
	if normalized := strings.ToLower(strings.TrimSpace(strategy)); normalized == "combine" {
		if params.Note, err = c.prompt("Technician note: "); err != nil {
			return err
		}
		if params.Cost, err = c.promptDecimal("Repair cost: "); err != nil {
			return err
		}
	}

	outcome, err := c.maintenance.PerformMaintenance(ctx, id, strategy, params)
	if err != nil {
		return err
	}
	if outcome.Result.Skipped {
		warnColor.Fprintf(c.out, "[Warning] %s\n", outcome.Result.Warning)
		return nil
	}
	for _, step := range outcome.Result.Steps {
		dimColor.Fprintf(c.out, "  %s\n", step)
	}
	okColor.Fprintf(c.out, "[Success] %s is Active again (%s)\n", outcome.Equipment.Name, outcome.Result.Note)
	return nil
}

// RunAudit запускает ежедневный аудит немедленно
func (c *Console) RunAudit(ctx context.Context) error {
	report, err := c.audit.RunAudit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Audit checked %d of %d items\n", report.Checked, report.Scanned)
	if len(report.Faults) == 0 {
		okColor.Fprintln(c.out, "[OK] No faults detected.")
		return nil
	}
	for _, item := range report.Faults {
		urgentColor.Fprintf(c.out, "[ALERT] Voltage spike detected in %s (%s)\n", item.Name, item.Location)
	}
	return nil
}

// ShowHistory выводит заявки по оборудованию
func (c *Console) ShowHistory(ctx context.Context) error {
	id, err := c.promptID("Enter Equipment ID to view history: ")
	if err != nil {
		return err
	}

	history, err := c.maintenance.GetHistory(ctx, id)
	if err != nil {
		return err
	}
	headerColor.Fprintf(c.out, "--- Maintenance History for %s ---\n", id)
	if len(history) == 0 {
		fmt.Fprintln(c.out, "No records found.")
		return nil
	}
	for _, order := range history {
		fmt.Fprintln(c.out, order.String())
	}
	return nil
}

// EditEquipment меняет поля оборудования. Пустой ввод оставляет поле без изменений.
func (c *Console) EditEquipment(ctx context.Context) error {
	id, err := c.promptID("Enter Equipment ID: ")
	if err != nil {
		return err
	}
	current, err := c.equipment.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var patch services.EquipmentPatch
	fields := []struct {
		label string
		value string
		dest  **string
	}{
		{"Name", current.Name, &patch.Name},
		{"Type", current.TypeName(), &patch.Type},
		{"Location", current.Location, &patch.Location},
	}
	for _, field := range fields {
		input, err := c.prompt(fmt.Sprintf("%s [%s]: ", field.label, field.value))
		if err != nil {
			return err
		}
		if input != "" {
			value := input
			*field.dest = &value
		}
	}

	rawCost, err := c.prompt(fmt.Sprintf("Cost [%s]: ", current.InitialCost.StringFixed(2)))
	if err != nil {
		return err
	}
	if rawCost != "" {
		cost, err := decimal.NewFromString(rawCost)
		if err != nil {
			return models.NewValidationError("cost", fmt.Sprintf("некорректная стоимость: %q", rawCost))
		}
		patch.Cost = &cost
	}

	updated, err := c.equipment.Edit(ctx, id, patch)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "[Success] %s updated\n", updated.Describe())
	return nil
}

// DeleteEquipment удаляет оборудование после подтверждения
func (c *Console) DeleteEquipment(ctx context.Context) error {
	id, err := c.promptID("Enter Equipment ID: ")
	if err != nil {
		return err
	}
	confirm, err := c.prompt("Type 'yes' to confirm: ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "yes") {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}

	if err := c.equipment.Delete(ctx, id); err != nil {
		return err
	}
	okColor.Fprintln(c.out, "[Success] Item removed.")
	return nil
}

func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errQuitInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) promptID(label string) (string, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", models.NewValidationError("id", "Invalid ID format.")
	}
	return raw, nil
}

func (c *Console) promptDecimal(label string) (decimal.Decimal, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, models.NewValidationError("cost", fmt.Sprintf("некорректная стоимость: %q", raw))
	}
	return value, nil
}

func (c *Console) printError(err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		errColor.Fprintf(c.out, "[Not found] %v\n", err)
	case errors.Is(err, models.ErrValidation):
		errColor.Fprintf(c.out, "[Error] %v\n", err)
	default:
		errColor.Fprintf(c.out, "[Failure] %v\n", err)
	}
}

func statusColor(status models.EquipmentStatus) *color.Color {
	switch status {
	case models.StatusActive:
		return okColor
	case models.StatusFaulty:
		return urgentColor
	default:
		return warnColor
	}
}
