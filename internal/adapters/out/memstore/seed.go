package memstore

import (
	"time"

	"pharmacy/internal/core/domain/model/history"
	"pharmacy/internal/core/domain/model/medicine"
	"pharmacy/internal/core/domain/model/patient"
)

// SeedMedicines returns the demo catalog. The real master data lives in an
// external data set; this seed mirrors its columns.
func SeedMedicines() []medicine.Medicine {
	type row struct {
		id, name, strength, form string
		stock                    int
		rx                       bool
		category                 string
		discontinued             bool
		maxPerOrder              int
		controlled               bool
	}

	rows := []row{
		{"MED001", "Paracetamol", "500mg", "Tablet", 500, false, "Analgesic", false, 60, false},
		{"MED002", "Metformin", "500mg", "Tablet", 300, true, "Antidiabetic", false, 90, false},
		{"MED003", "Metformin", "850mg", "Tablet", 150, true, "Antidiabetic", false, 90, false},
		{"MED004", "Atorvastatin", "20mg", "Tablet", 200, true, "Statin", false, 30, false},
		{"MED005", "Lisinopril", "10mg", "Tablet", 180, true, "ACE Inhibitor", false, 30, false},
		{"MED006", "Amlodipine", "5mg", "Tablet", 220, true, "Calcium Channel Blocker", false, 30, false},
		{"MED007", "Omeprazole", "20mg", "Capsule", 260, false, "Proton Pump Inhibitor", false, 60, false},
		{"MED008", "Amoxicillin", "250mg", "Capsule", 120, true, "Antibiotic", false, 30, false},
		{"MED009", "Ibuprofen", "400mg", "Tablet", 350, false, "NSAID", false, 60, false},
		{"MED010", "Aspirin", "75mg", "Tablet", 400, false, "Antiplatelet", false, 60, false},
		{"MED011", "Diazepam", "5mg", "Tablet", 40, true, "Benzodiazepine", false, 30, true},
		{"MED012", "Codeine", "30mg", "Tablet", 0, true, "Opioid Analgesic", false, 30, true},
		{"MED013", "Ranitidine", "150mg", "Tablet", 0, false, "H2 Blocker", true, 60, false},
		{"MED014", "Salbutamol", "100mcg", "Inhaler", 80, true, "Bronchodilator", false, 5, false},
	}

	medicines := make([]medicine.Medicine, 0, len(rows))
	for _, r := range rows {
		med, err := medicine.NewMedicine(
			r.id, r.name, r.strength, r.form, r.stock,
			r.rx, r.category, r.discontinued, r.maxPerOrder, r.controlled,
		)
		if err != nil {
			panic(err)
		}
		medicines = append(medicines, med)
	}
	return medicines
}

// SeedPatients returns the demo patients, derived the way the original data
// set derives them from unique order-history rows.
func SeedPatients() []patient.Patient {
	type row struct {
		id, name, email, phone string
	}

	rows := []row{
		{"P001", "Anita Sharma", "anita.sharma@example.com", "+1-555-0101"},
		{"P002", "Rahul Verma", "rahul.verma@example.com", "+1-555-0102"},
		{"P003", "Grace Chen", "grace.chen@example.com", "+1-555-0103"},
	}

	patients := make([]patient.Patient, 0, len(rows))
	for _, r := range rows {
		p, err := patient.NewPatient(r.id, r.name, r.email, r.phone)
		if err != nil {
			panic(err)
		}
		patients = append(patients, p)
	}
	return patients
}

// SeedPurchases returns demo purchase history relative to now, so refill
// candidates span the urgency spectrum out of the box.
func SeedPurchases(now time.Time) []history.PurchaseRecord {
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	return []history.PurchaseRecord{
		{
			OrderID: "ORD-SEED-000001", PatientID: "P001", PatientName: "Anita Sharma",
			MedicineID: "MED002", MedicineName: "Metformin", Dosage: "500mg",
			Quantity: 60, PurchaseDate: daysAgo(28), SupplyDays: 30, OrderStatus: "COMPLETED",
		},
		{
			OrderID: "ORD-SEED-000002", PatientID: "P001", PatientName: "Anita Sharma",
			MedicineID: "MED005", MedicineName: "Lisinopril", Dosage: "10mg",
			Quantity: 30, PurchaseDate: daysAgo(35), SupplyDays: 30, OrderStatus: "COMPLETED",
		},
		{
			OrderID: "ORD-SEED-000003", PatientID: "P002", PatientName: "Rahul Verma",
			MedicineID: "MED004", MedicineName: "Atorvastatin", Dosage: "20mg",
			Quantity: 30, PurchaseDate: daysAgo(24), SupplyDays: 30, OrderStatus: "COMPLETED",
		},
		{
			OrderID: "ORD-SEED-000004", PatientID: "P002", PatientName: "Rahul Verma",
			MedicineID: "MED007", MedicineName: "Omeprazole", Dosage: "20mg",
			Quantity: 30, PurchaseDate: daysAgo(10), SupplyDays: 30, OrderStatus: "COMPLETED",
		},
		{
			OrderID: "ORD-SEED-000005", PatientID: "P003", PatientName: "Grace Chen",
			MedicineID: "MED006", MedicineName: "Amlodipine", Dosage: "5mg",
			Quantity: 30, PurchaseDate: daysAgo(29), SupplyDays: 30, OrderStatus: "COMPLETED",
		},
	}
}
